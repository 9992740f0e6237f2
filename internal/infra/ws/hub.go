// File: internal/infra/ws/hub.go
package ws

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
	"github.com/razavioo/notimetolie.com/internal/infra/metrics"
)

// Conn is the write half of a progress connection. gorilla's *websocket.Conn
// satisfies it; tests use an in-memory fake.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Envelope is the wire shape of every server-to-client message.
type Envelope struct {
	Type      string         `json:"type"`
	JobID     string         `json:"job_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	Progress  *float64       `json:"progress,omitempty"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Hub multiplexes job events onto every live connection of a user. A user may
// hold several connections (tabs, devices); each event is fanned out to all of
// them. Writes are best-effort: a connection that errors is evicted, never
// retried.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{} // userID -> connection set

	// highest progress delivered per job; a late 30% after an 80% is dropped
	progress map[string]float64

	log *zerolog.Logger
}

var _ adapter.ProgressPublisher = (*Hub)(nil)

func NewHub(log *zerolog.Logger) *Hub {
	return &Hub{
		conns:    make(map[string]map[Conn]struct{}),
		progress: make(map[string]float64),
		log:      log,
	}
}

func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}
	metrics.WSConnOpened()
}

func (h *Hub) Unregister(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			metrics.WSConnClosed()
		}
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// PublishStatus fans a lifecycle transition out to the user's connections.
// Terminal statuses also clear the job's progress watermark.
func (h *Hub) PublishStatus(userID, jobID string, status model.JobStatus, data map[string]any) {
	if status.Terminal() {
		h.mu.Lock()
		delete(h.progress, jobID)
		h.mu.Unlock()
	}
	h.broadcast(userID, Envelope{
		Type:      "ai_job_update",
		JobID:     jobID,
		Status:    string(status),
		Data:      data,
		Timestamp: time.Now(),
	})
}

// PublishProgress delivers a progress tick, enforcing monotonicity per job:
// an update at or below the last delivered percentage is silently dropped.
func (h *Hub) PublishProgress(userID, jobID string, percent float64, message string) {
	h.mu.Lock()
	if percent <= h.progress[jobID] {
		h.mu.Unlock()
		return
	}
	h.progress[jobID] = percent
	h.mu.Unlock()

	h.broadcast(userID, Envelope{
		Type:      "ai_job_progress",
		JobID:     jobID,
		Progress:  &percent,
		Message:   message,
		Timestamp: time.Now(),
	})
}

func (h *Hub) broadcast(userID string, env Envelope) {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.WriteJSON(env); err != nil {
			h.log.Debug().Err(err).Str("user_id", userID).Msg("evicting dead ws connection")
			_ = c.Close()
			h.Unregister(userID, c)
		}
	}
}

// Stats reports live connection counts for the diagnostics endpoint.
func (h *Hub) Stats() (users, connections int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.conns {
		connections += len(set)
	}
	return len(h.conns), connections
}
