package repository

import (
	"context"
	"time"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

// JobRepository persists jobs and enforces the state-machine guards at the
// storage layer: every transition write is conditional on the current status
// so a late result can never overwrite a terminal state.
type JobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.Job) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Job, error)

	// MarkRunning transitions pending -> running and stamps started_at.
	// Returns false when the job is no longer pending (already dispatched
	// or cancelled), in which case the caller must not run it.
	MarkRunning(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)

	// FinishIfRunning writes the terminal fields of job (status, output,
	// usage, error message, completed_at, execution time) guarded on the
	// row still being in running state. Returns false on a cancellation
	// race; the late result must then be discarded.
	FinishIfRunning(ctx context.Context, tx Tx, job *model.Job) (bool, error)

	// Cancel marks a non-terminal job cancelled with the given reason and
	// completion timestamp. Returns false when the job was already terminal.
	Cancel(ctx context.Context, tx Tx, id, reason string, at time.Time) (bool, error)

	// Touch stamps updated_at regardless of outcome.
	Touch(ctx context.Context, tx Tx, id string) error

	// ReclaimPending atomically picks one pending job older than minAge and
	// returns it for re-dispatch. Used to recover jobs orphaned by a restart.
	ReclaimPending(ctx context.Context, minAge time.Duration) (*model.Job, error)
}
