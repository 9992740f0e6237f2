// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_jobs_total",
			Help: "Jobs by terminal outcome (completed/failed/cancelled).",
		},
		[]string{"kind", "status"},
	)

	jobDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_job_duration_ms",
			Help:    "End-to-end job execution time in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		},
		[]string{"kind"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "Provider call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "model", "success"},
	)

	suggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_suggestions_total",
			Help: "Suggestions by review outcome (created/approved/rejected).",
		},
		[]string{"outcome"},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Currently open progress-channel connections.",
		},
	)

	quotaBlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_quota_blocks_total",
			Help: "Submissions rejected by the daily request quota.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			jobsTotal, jobDurationMs,
			aiTokensIn, aiTokensOut, aiCallsLatencyMs,
			suggestionsTotal, wsConnections, quotaBlocks,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJob(kind, status string) {
	jobsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func ObserveJobDuration(kind string, ms int64) {
	jobDurationMs.WithLabelValues(norm(kind)).Observe(float64(ms))
}

func ObserveGeneration(provider, model string, tokensIn, tokensOut, latencyMs int, success bool) {
	aiTokensIn.WithLabelValues(norm(provider), norm(model)).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(norm(provider), norm(model)).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncSuggestion(outcome string) {
	suggestionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func WSConnOpened() { wsConnections.Inc() }
func WSConnClosed() { wsConnections.Dec() }

func QuotaBlocked() { quotaBlocks.Inc() }
