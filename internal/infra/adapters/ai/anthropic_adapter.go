// File: internal/infra/adapters/ai/anthropic_adapter.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIProvider = (*AnthropicAdapter)(nil)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// AnthropicAdapter speaks the native Messages API. Anthropic is one of the
// few vendors with a bespoke request/response shape (system prompt as a top
// level field, distinct usage accounting), so it does not go through the
// OpenAI-compatible path.
type AnthropicAdapter struct {
	apiKey string
	base   string
	model  string
	client *http.Client
}

func NewAnthropicAdapter(apiKey, model string) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, domain.ErrNoUsableCredential
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicAdapter{
		apiKey: apiKey,
		base:   anthropicBaseURL,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *AnthropicAdapter) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []map[string]any   `json:"tools,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *AnthropicAdapter) Generate(ctx context.Context, req adapter.GenerationRequest) (adapter.GenerationResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Tools:       req.Tools,
	}

	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/messages", bytes.NewReader(b))
	if err != nil {
		return adapter.GenerationResult{}, normalizeTransportError(a.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return adapter.GenerationResult{}, normalizeTransportError(a.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.GenerationResult{}, normalizeTransportError(a.Name(), err)
	}

	var payload anthropicResponse
	_ = json.Unmarshal(raw, &payload)

	if resp.StatusCode >= 300 {
		msg := string(raw)
		if payload.Error != nil {
			msg = payload.Error.Message
		}
		return adapter.GenerationResult{}, normalizeHTTPError(a.Name(), a.model, resp.StatusCode, msg)
	}

	out := adapter.GenerationResult{
		FinishReason: payload.StopReason,
		Usage: adapter.Usage{
			PromptTokens:     payload.Usage.InputTokens,
			CompletionTokens: payload.Usage.OutputTokens,
			TotalTokens:      payload.Usage.InputTokens + payload.Usage.OutputTokens,
		},
	}
	for _, block := range payload.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, adapter.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	return out, nil
}
