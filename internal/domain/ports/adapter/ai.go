package adapter

import (
	"context"
	"encoding/json"
)

// GenerationRequest is the single capability every provider adapter accepts.
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Tools        []map[string]any
}

// Usage for a single generation call as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// GenerationResult carries the successful variant of a generation call.
type GenerationResult struct {
	Content      string
	FinishReason string
	Usage        Usage
	ToolCalls    []ToolCall
}

// AIProvider is the port for LLM generation. Implementations never leak raw
// vendor errors: every failure is a *domain.ProviderError.
type AIProvider interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}
