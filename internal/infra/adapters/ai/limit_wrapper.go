// File: internal/infra/adapters/ai/limit_wrapper.go
package ai

import (
	"context"

	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
)

// Gate caps in-flight generation calls across all jobs. Adapters are built
// per job, so the semaphore has to live outside any single provider instance.
type Gate struct {
	sem chan struct{}
}

// NewGate returns a gate admitting up to maxConcurrent calls; zero or
// negative means unbounded.
func NewGate(maxConcurrent int) *Gate {
	if maxConcurrent <= 0 {
		return &Gate{}
	}
	return &Gate{sem: make(chan struct{}, maxConcurrent)}
}

// Wrap returns a provider whose Generate calls pass through the gate.
func (g *Gate) Wrap(inner adapter.AIProvider) adapter.AIProvider {
	if g == nil || g.sem == nil {
		return inner
	}
	return &limitedProvider{inner: inner, gate: g}
}

var _ adapter.AIProvider = (*limitedProvider)(nil)

type limitedProvider struct {
	inner adapter.AIProvider
	gate  *Gate
}

func (l *limitedProvider) Name() string { return l.inner.Name() }

func (l *limitedProvider) Generate(ctx context.Context, req adapter.GenerationRequest) (adapter.GenerationResult, error) {
	select {
	case l.gate.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.GenerationResult{}, normalizeTransportError(l.inner.Name(), ctx.Err())
	}
	defer func() { <-l.gate.sem }()
	return l.inner.Generate(ctx, req)
}
