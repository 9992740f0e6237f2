package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *jobRepo {
	return &jobRepo{pool: pool, tm: tm}
}

const jobColumns = `id, user_id, configuration_id, kind, status, input_prompt, input_metadata,
output_data, related_content_ids, prompt_tokens, completion_tokens, total_tokens,
execution_time_ms, error_message, created_at, updated_at, started_at, completed_at`

func (r *jobRepo) Save(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if job.ID == "" {
		job.ID = ulid.Make().String()
	}
	job.UpdatedAt = time.Now()

	meta, _ := json.Marshal(job.InputMetadata)
	out, _ := json.Marshal(job.OutputData)
	related, _ := json.Marshal(job.RelatedContentIDs)

	const q = `
INSERT INTO ai_jobs (` + jobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  output_data = EXCLUDED.output_data,
  related_content_ids = EXCLUDED.related_content_ids,
  prompt_tokens = EXCLUDED.prompt_tokens,
  completion_tokens = EXCLUDED.completion_tokens,
  total_tokens = EXCLUDED.total_tokens,
  execution_time_ms = EXCLUDED.execution_time_ms,
  error_message = EXCLUDED.error_message,
  updated_at = EXCLUDED.updated_at,
  started_at = EXCLUDED.started_at,
  completed_at = EXCLUDED.completed_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.ConfigurationID, job.Kind, job.Status, job.InputPrompt, meta,
		out, related, job.Usage.Prompt, job.Usage.Completion, job.Usage.Total,
		job.ExecutionTimeMS, job.ErrorMessage, job.CreatedAt, job.UpdatedAt, job.StartedAt, job.CompletedAt)
	return err
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		j                  model.Job
		kind, status       string
		meta, out, related []byte
	)
	err := row.Scan(
		&j.ID, &j.UserID, &j.ConfigurationID, &kind, &status, &j.InputPrompt, &meta,
		&out, &related, &j.Usage.Prompt, &j.Usage.Completion, &j.Usage.Total,
		&j.ExecutionTimeMS, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, translateScanErr(err)
	}
	j.Kind = model.JobKind(kind)
	j.Status = model.JobStatus(status)
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &j.InputMetadata)
	}
	if len(out) > 0 {
		_ = json.Unmarshal(out, &j.OutputData)
	}
	if len(related) > 0 {
		_ = json.Unmarshal(related, &j.RelatedContentIDs)
	}
	return &j, nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM ai_jobs WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := pickRows(ctx, r.pool, tx,
		`SELECT `+jobColumns+` FROM ai_jobs WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MarkRunning is the idempotency guard for dispatch: only a pending job may
// enter running, and only once.
func (r *jobRepo) MarkRunning(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	const q = `
UPDATE ai_jobs SET status='running', started_at=$2, updated_at=NOW()
WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FinishIfRunning applies the terminal result only while the row is still
// running. A cancel that raced the provider call leaves the row cancelled and
// this update touches zero rows, which is how a late result gets discarded.
func (r *jobRepo) FinishIfRunning(ctx context.Context, tx repository.Tx, job *model.Job) (bool, error) {
	out, _ := json.Marshal(job.OutputData)
	related, _ := json.Marshal(job.RelatedContentIDs)

	const q = `
UPDATE ai_jobs SET
  status=$2, output_data=$3, related_content_ids=$4,
  prompt_tokens=$5, completion_tokens=$6, total_tokens=$7,
  execution_time_ms=$8, error_message=$9, completed_at=$10, updated_at=NOW()
WHERE id=$1 AND status='running';`
	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.Status, out, related,
		job.Usage.Prompt, job.Usage.Completion, job.Usage.Total,
		job.ExecutionTimeMS, job.ErrorMessage, job.CompletedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *jobRepo) Cancel(ctx context.Context, tx repository.Tx, id, reason string, at time.Time) (bool, error) {
	const q = `
UPDATE ai_jobs SET status='cancelled', error_message=$2, completed_at=$3, updated_at=NOW()
WHERE id=$1 AND status IN ('pending','running');`
	tag, err := execSQL(ctx, r.pool, tx, q, id, reason, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *jobRepo) Touch(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE ai_jobs SET updated_at=NOW() WHERE id=$1;`, id)
	return err
}

// ReclaimPending picks one stale pending job for re-dispatch after a restart.
// SKIP LOCKED keeps concurrent sweepers from fighting over the same row.
func (r *jobRepo) ReclaimPending(ctx context.Context, minAge time.Duration) (*model.Job, error) {
	var job *model.Job

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		row, err := pickRow(ctx, r.pool, tx, `
SELECT `+jobColumns+` FROM ai_jobs
WHERE status='pending' AND created_at < $1
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`, time.Now().Add(-minAge))
		if err != nil {
			return err
		}
		j, err := scanJob(row)
		if err != nil {
			return err
		}
		// stamp so the same row is not reclaimed again on the next sweep
		if _, err := execSQL(ctx, r.pool, tx,
			`UPDATE ai_jobs SET updated_at=NOW(), created_at=NOW() WHERE id=$1;`, j.ID); err != nil {
			return err
		}
		job = j
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}
