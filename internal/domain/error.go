package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrConfigInactive     = errors.New("configuration is inactive")
	ErrNotOwner           = errors.New("entity does not belong to caller")
	ErrJobTerminal        = errors.New("job is already in a terminal state")
	ErrQuotaExceeded      = errors.New("daily request quota exceeded")
	ErrEmptyCompletion    = errors.New("provider returned empty content")
	ErrDecryptionFailed   = errors.New("credential decryption failed")
	ErrSuggestionActioned = errors.New("suggestion was already approved or rejected")
	ErrMissingEditTarget  = errors.New("content editor jobs require a block_id in input metadata")
	ErrUnknownJobKind     = errors.New("unknown job kind")
	ErrUnknownProvider    = errors.New("unknown provider identifier")
	ErrEndpointRequired   = errors.New("provider requires an explicit api endpoint")
	ErrNoUsableCredential = errors.New("no usable credential for configuration")
)

// ProviderErrorKind classifies provider failures so the orchestrator can
// react uniformly regardless of vendor.
type ProviderErrorKind string

const (
	ProviderErrAuth         ProviderErrorKind = "auth"
	ProviderErrRateLimited  ProviderErrorKind = "rate_limit"
	ProviderErrUnknownModel ProviderErrorKind = "unknown_model"
	ProviderErrTransport    ProviderErrorKind = "transport"
)

// ProviderError is the normalized error variant of a generation call.
// Adapters never leak raw vendor errors; they rewrite the message for the
// auth, unknown-model and rate-limit classes and wrap everything else as
// a transport failure.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func NewProviderError(provider string, kind ProviderErrorKind, message string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Message: message}
}

// AsProviderError unwraps err into a *ProviderError when possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
