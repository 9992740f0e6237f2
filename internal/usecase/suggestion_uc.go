// File: internal/usecase/suggestion_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
	"github.com/razavioo/notimetolie.com/internal/infra/metrics"
)

// SuggestionUseCase is the human review surface. Approve and reject act
// exactly once; approval materializes the suggestion as a draft content unit
// in the same transaction as the status flip.
type SuggestionUseCase struct {
	suggestions repository.SuggestionRepository
	contents    repository.ContentRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewSuggestionUseCase(
	suggestions repository.SuggestionRepository,
	contents repository.ContentRepository,
	tm repository.TransactionManager,
	log *zerolog.Logger,
) *SuggestionUseCase {
	return &SuggestionUseCase{suggestions: suggestions, contents: contents, tm: tm, log: log}
}

// List returns the caller's suggestions, optionally filtered by status.
func (uc *SuggestionUseCase) List(ctx context.Context, userID string, status model.SuggestionStatus, limit int) ([]*model.Suggestion, error) {
	if status != "" {
		switch status {
		case model.SuggestionPending, model.SuggestionApproved, model.SuggestionRejected:
		default:
			return nil, domain.ErrInvalidArgument
		}
	}
	return uc.suggestions.ListByUser(ctx, nil, userID, status, limit)
}

// Get returns one suggestion visible to userID.
func (uc *SuggestionUseCase) Get(ctx context.Context, userID, suggestionID string) (*model.Suggestion, error) {
	s, err := uc.suggestions.FindByID(ctx, nil, suggestionID)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return s, nil
}

// Approve creates the content block and flips the suggestion in one
// transaction. If another reviewer won the race the block creation is rolled
// back and ErrSuggestionActioned is returned.
func (uc *SuggestionUseCase) Approve(ctx context.Context, userID, suggestionID string) (createdBlockID string, err error) {
	s, err := uc.Get(ctx, userID, suggestionID)
	if err != nil {
		return "", err
	}
	if s.Status != model.SuggestionPending {
		return "", domain.ErrSuggestionActioned
	}

	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		blockID, err := uc.contents.CreateFromSuggestion(ctx, tx, s)
		if err != nil {
			return err
		}
		ok, err := uc.suggestions.Approve(ctx, tx, suggestionID, userID, blockID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrSuggestionActioned
		}
		createdBlockID = blockID
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.IncSuggestion("approved")
	uc.log.Info().
		Str("suggestion_id", suggestionID).
		Str("block_id", createdBlockID).
		Msg("suggestion approved")
	return createdBlockID, nil
}

// Reject records the decision with optional reviewer feedback.
func (uc *SuggestionUseCase) Reject(ctx context.Context, userID, suggestionID, feedback string) error {
	s, err := uc.Get(ctx, userID, suggestionID)
	if err != nil {
		return err
	}
	if s.Status != model.SuggestionPending {
		return domain.ErrSuggestionActioned
	}

	ok, err := uc.suggestions.Reject(ctx, nil, suggestionID, userID, feedback, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSuggestionActioned
	}

	metrics.IncSuggestion("rejected")
	uc.log.Info().Str("suggestion_id", suggestionID).Msg("suggestion rejected")
	return nil
}
