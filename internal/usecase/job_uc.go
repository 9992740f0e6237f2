// File: internal/usecase/job_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
	"github.com/razavioo/notimetolie.com/internal/infra/logging"
	"github.com/razavioo/notimetolie.com/internal/infra/metrics"
)

// Dispatcher hands accepted jobs to the execution backend.
type Dispatcher interface {
	Dispatch(jobID string) error
}

// QuotaLimiter enforces the per-configuration daily request budget.
type QuotaLimiter interface {
	Allow(ctx context.Context, configID string, limit int) error
}

// JobUseCase is the submission/query/cancel surface of the orchestrator.
// Execution itself lives in the worker; this layer owns admission control.
type JobUseCase struct {
	jobs       repository.JobRepository
	configs    repository.ConfigurationRepository
	quota      QuotaLimiter
	dispatcher Dispatcher
	progress   adapter.ProgressPublisher
	log        *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	configs repository.ConfigurationRepository,
	quota QuotaLimiter,
	dispatcher Dispatcher,
	progress adapter.ProgressPublisher,
	log *zerolog.Logger,
) *JobUseCase {
	return &JobUseCase{
		jobs:       jobs,
		configs:    configs,
		quota:      quota,
		dispatcher: dispatcher,
		progress:   progress,
		log:        log,
	}
}

// Submit validates, persists and dispatches a new job. The job row is the
// source of truth: once it is saved pending, a crash before dispatch is
// recovered by the sweeper.
func (uc *JobUseCase) Submit(ctx context.Context, userID, configID string, kind model.JobKind, prompt string, metadata map[string]any) (*model.Job, error) {
	if !kind.Valid() {
		return nil, domain.ErrUnknownJobKind
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidArgument
	}

	cfg, err := uc.configs.FindByID(ctx, nil, configID)
	if err != nil {
		return nil, err
	}
	if cfg.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	if !cfg.Active {
		return nil, domain.ErrConfigInactive
	}
	if kind == model.JobKindContentEditor {
		if id, ok := metadata["block_id"].(string); !ok || id == "" {
			return nil, domain.ErrMissingEditTarget
		}
	}

	if err := uc.quota.Allow(ctx, cfg.ID, cfg.DailyRequestLimit); err != nil {
		if err == domain.ErrQuotaExceeded {
			metrics.QuotaBlocked()
		}
		return nil, err
	}

	job := model.NewJob("", userID, configID, kind, prompt, metadata)
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		return nil, err
	}

	if err := uc.dispatcher.Dispatch(job.ID); err != nil {
		// row stays pending; the sweeper will pick it up
		uc.log.Warn().Err(err).Str("job_id", job.ID).Msg("immediate dispatch failed")
	}

	logging.With(ctx, uc.log).Info().
		Str("job_id", job.ID).
		Str("kind", string(kind)).
		Msg("job accepted")
	return job, nil
}

// Get returns a job visible to userID.
func (uc *JobUseCase) Get(ctx context.Context, userID, jobID string) (*model.Job, error) {
	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return job, nil
}

// List returns the caller's most recent jobs.
func (uc *JobUseCase) List(ctx context.Context, userID string, limit int) ([]*model.Job, error) {
	return uc.jobs.ListByUser(ctx, nil, userID, limit)
}

// Cancel moves a non-terminal job to cancelled. Idempotent from the caller's
// view on pending jobs; a job already terminal yields ErrJobTerminal.
func (uc *JobUseCase) Cancel(ctx context.Context, userID, jobID, reason string) error {
	job, err := uc.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return err
	}
	if job.UserID != userID {
		return domain.ErrNotOwner
	}
	if reason == "" {
		reason = "cancelled by user"
	}

	ok, err := uc.jobs.Cancel(ctx, nil, jobID, reason, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrJobTerminal
	}

	metrics.IncJob(string(job.Kind), string(model.JobStatusCancelled))
	uc.progress.PublishStatus(userID, jobID, model.JobStatusCancelled, map[string]any{"reason": reason})
	logging.With(ctx, uc.log).Info().Str("job_id", jobID).Msg("job cancelled")
	return nil
}
