// File: internal/infra/adapters/ai/provider_table.go
package ai

import (
	"context"
	"strings"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
)

// compatBaseURLs maps every OpenAI-compatible provider to its gateway.
// These vendors differ from OpenAI only in base URL (and sometimes model
// naming), so they all share CompatAdapter. Adding one is a table entry.
var compatBaseURLs = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"groq":       "https://api.groq.com/openai/v1",
	"mistral":    "https://api.mistral.ai/v1",
	"deepseek":   "https://api.deepseek.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"together":   "https://api.together.xyz/v1",
	"fireworks":  "https://api.fireworks.ai/inference/v1",
	"cerebras":   "https://api.cerebras.ai/v1",
	"sambanova":  "https://api.sambanova.ai/v1",
	"perplexity": "https://api.perplexity.ai",
	"xai":        "https://api.x.ai/v1",
	"moonshot":   "https://api.moonshot.cn/v1",
	"zhipu":      "https://open.bigmodel.cn/api/paas/v4",
	"dashscope":  "https://dashscope.aliyuncs.com/compatible-mode/v1",
	"yi":         "https://api.lingyiwanwu.com/v1",
	"nebius":     "https://api.studio.nebius.ai/v1",
	"novita":     "https://api.novita.ai/v3/openai",
	"hyperbolic": "https://api.hyperbolic.xyz/v1",
	"ollama":     "http://localhost:11434/v1",
}

// endpointRequired lists OpenAI-compatible providers without a public
// gateway: the configuration must carry an explicit endpoint.
var endpointRequired = map[string]bool{
	"azure":  true,
	"vllm":   true,
	"custom": true,
}

// KnownProvider reports whether id resolves to any adapter family.
func KnownProvider(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "anthropic" || id == "gemini" {
		return true
	}
	if _, ok := compatBaseURLs[id]; ok {
		return true
	}
	return endpointRequired[id]
}

// EndpointRequired reports whether id has no public gateway and must carry
// an explicit endpoint in its configuration.
func EndpointRequired(id string) bool {
	return endpointRequired[strings.ToLower(strings.TrimSpace(id))]
}

// Catalog exposes the provider table behind the interface the configuration
// surface validates against.
type Catalog struct{}

func (Catalog) Known(id string) bool         { return KnownProvider(id) }
func (Catalog) NeedsEndpoint(id string) bool { return EndpointRequired(id) }

// NewProvider resolves a provider identifier plus model (plus optional custom
// endpoint) to a concrete adapter.
func NewProvider(ctx context.Context, providerID, apiKey, modelName, endpoint string) (adapter.AIProvider, error) {
	id := strings.ToLower(strings.TrimSpace(providerID))
	switch {
	case id == "anthropic":
		return NewAnthropicAdapter(apiKey, modelName)
	case id == "gemini":
		return NewGeminiAdapter(ctx, apiKey, modelName)
	case endpointRequired[id]:
		if endpoint == "" {
			return nil, domain.ErrEndpointRequired
		}
		return NewCompatAdapter(id, apiKey, modelName, endpoint)
	default:
		base, ok := compatBaseURLs[id]
		if !ok {
			return nil, domain.ErrUnknownProvider
		}
		// an explicit endpoint overrides the table (proxies, regional mirrors)
		if endpoint != "" {
			base = endpoint
		}
		return NewCompatAdapter(id, apiKey, modelName, base)
	}
}

// FromConfiguration builds the adapter an agent configuration describes,
// given the already-decrypted credential.
func FromConfiguration(ctx context.Context, cfg *model.AgentConfiguration, apiKey string) (adapter.AIProvider, error) {
	return NewProvider(ctx, cfg.Provider, apiKey, cfg.ModelName, cfg.APIEndpoint)
}
