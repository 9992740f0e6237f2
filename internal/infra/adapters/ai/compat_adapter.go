// File: internal/infra/adapters/ai/compat_adapter.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIProvider = (*CompatAdapter)(nil)

// CompatAdapter talks to any vendor exposing an OpenAI-shaped chat-completion
// endpoint. The overwhelming majority of supported providers differ only in
// base URL, so this single implementation parameterized by base URL replaces
// a per-vendor class tree. Adding a compatible vendor is one table entry in
// provider_table.go.
type CompatAdapter struct {
	provider string
	model    string
	client   openai.Client
}

func NewCompatAdapter(provider, apiKey, model, baseURL string) (*CompatAdapter, error) {
	if apiKey == "" {
		return nil, domain.ErrNoUsableCredential
	}
	if baseURL == "" {
		return nil, domain.ErrEndpointRequired
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")),
	)
	return &CompatAdapter{provider: provider, model: model, client: client}, nil
}

func (a *CompatAdapter) Name() string { return a.provider }

func (a *CompatAdapter) Generate(ctx context.Context, req adapter.GenerationRequest) (adapter.GenerationResult, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	// Tool specs are forwarded verbatim; the wire format belongs to the
	// vendor, not to this adapter.
	var opts []option.RequestOption
	if len(req.Tools) > 0 {
		opts = append(opts,
			option.WithJSONSet("tools", req.Tools),
			option.WithJSONSet("tool_choice", "auto"),
		)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return adapter.GenerationResult{}, normalizeHTTPError(a.provider, a.model, apierr.StatusCode, apierr.Error())
		}
		return adapter.GenerationResult{}, normalizeTransportError(a.provider, err)
	}
	if len(resp.Choices) == 0 {
		return adapter.GenerationResult{}, domain.NewProviderError(a.provider, domain.ProviderErrTransport, "no choices in response")
	}

	choice := resp.Choices[0]
	out := adapter.GenerationResult{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: adapter.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, adapter.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	// Some self-hosted gateways omit usage accounting; estimate locally so
	// quota and metrics never see zeros for a successful call.
	if out.Usage.TotalTokens == 0 {
		out.Usage.PromptTokens = estimateTokens(req.SystemPrompt + req.Prompt)
		out.Usage.CompletionTokens = estimateTokens(out.Content)
		out.Usage.TotalTokens = out.Usage.PromptTokens + out.Usage.CompletionTokens
	}
	return out, nil
}
