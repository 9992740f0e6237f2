package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/razavioo/notimetolie.com/internal/domain"
)

// normalizeHTTPError rewrites a vendor HTTP failure into the uniform error
// variant. Three classes get a stable, human-readable message so the
// orchestrator (and the user seeing the failed job) does not have to parse
// vendor-specific payloads.
func normalizeHTTPError(provider, model string, status int, raw string) *domain.ProviderError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewProviderError(provider, domain.ProviderErrAuth,
			fmt.Sprintf("Authentication failed: the API key was rejected by %s", provider))
	case status == http.StatusTooManyRequests:
		return domain.NewProviderError(provider, domain.ProviderErrRateLimited,
			fmt.Sprintf("Rate limited by %s, retry later", provider))
	case status == http.StatusNotFound, isUnknownModelMessage(raw):
		return domain.NewProviderError(provider, domain.ProviderErrUnknownModel,
			fmt.Sprintf("Model %q is not available on %s", model, provider))
	default:
		msg := strings.TrimSpace(raw)
		if msg == "" {
			msg = fmt.Sprintf("http %d", status)
		}
		return domain.NewProviderError(provider, domain.ProviderErrTransport, msg)
	}
}

// normalizeTransportError covers failures before any HTTP status exists
// (DNS, TLS, timeouts, cancelled contexts).
func normalizeTransportError(provider string, err error) *domain.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(provider, domain.ProviderErrTransport,
			fmt.Sprintf("Request to %s timed out", provider))
	}
	return domain.NewProviderError(provider, domain.ProviderErrTransport, err.Error())
}

func isUnknownModelMessage(raw string) bool {
	l := strings.ToLower(raw)
	if !strings.Contains(l, "model") {
		return false
	}
	return strings.Contains(l, "not found") ||
		strings.Contains(l, "does not exist") ||
		strings.Contains(l, "unknown") ||
		strings.Contains(l, "invalid model")
}
