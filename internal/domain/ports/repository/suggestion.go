package repository

import (
	"context"
	"time"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

type SuggestionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Suggestion) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Suggestion, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Suggestion, error)
	ListByUser(ctx context.Context, tx Tx, userID string, status model.SuggestionStatus, limit int) ([]*model.Suggestion, error)

	// Approve and Reject are guarded on pending status so a suggestion can
	// be actioned exactly once. They return false when already actioned.
	Approve(ctx context.Context, tx Tx, id, reviewerID, createdBlockID string, at time.Time) (bool, error)
	Reject(ctx context.Context, tx Tx, id, reviewerID, feedback string, at time.Time) (bool, error)
}
