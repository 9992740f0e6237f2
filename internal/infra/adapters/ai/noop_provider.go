package ai

import (
	"context"
	"time"

	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
)

var _ adapter.AIProvider = (*NoopProvider)(nil)

// NoopProvider answers every request with a canned completion. Used in dev
// mode so the whole pipeline can be exercised without vendor credentials.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider { return &NoopProvider{} }

func (n *NoopProvider) Name() string { return "noop" }

func (n *NoopProvider) Generate(ctx context.Context, req adapter.GenerationRequest) (adapter.GenerationResult, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return adapter.GenerationResult{}, normalizeTransportError(n.Name(), ctx.Err())
	}
	content := "# Placeholder\n\nThis is a noop completion for: " + req.Prompt
	pt := estimateTokens(req.Prompt)
	ct := estimateTokens(content)
	return adapter.GenerationResult{
		Content:      content,
		FinishReason: "stop",
		Usage:        adapter.Usage{PromptTokens: pt, CompletionTokens: ct, TotalTokens: pt + ct},
	}, nil
}
