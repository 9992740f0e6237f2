package repository

import (
	"context"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

// ContentRepository is the narrow read/write contract against the content
// store. Retrieval is an enrichment for prompts; the full content CRUD lives
// outside this core.
type ContentRepository interface {
	// FindRelated matches published content titles against query, bounded by
	// limit, returning previews suitable for prompt grounding.
	FindRelated(ctx context.Context, query string, limit int) ([]model.RelatedContent, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.ContentNode, error)

	// CreateFromSuggestion materializes an approved suggestion as a real
	// content unit and returns its id.
	CreateFromSuggestion(ctx context.Context, tx Tx, s *model.Suggestion) (string, error)
}
