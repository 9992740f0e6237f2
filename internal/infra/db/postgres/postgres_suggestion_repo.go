// File: internal/infra/db/postgres/postgres_suggestion_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

var _ repository.SuggestionRepository = (*suggestionRepo)(nil)

type suggestionRepo struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepo(pool *pgxpool.Pool) *suggestionRepo {
	return &suggestionRepo{pool: pool}
}

const suggestionColumns = `id, job_id, user_id, title, slug, content, block_type, language, tags,
source_urls, confidence, rationale, status, reviewed_by, feedback, created_block_id,
created_at, approved_at, rejected_at`

func (r *suggestionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Suggestion) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	tags, _ := json.Marshal(s.Tags)
	urls, _ := json.Marshal(s.SourceURLs)

	const q = `
INSERT INTO ai_suggestions (` + suggestionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19);`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.JobID, s.UserID, s.Title, s.Slug, s.Content, s.BlockType, s.Language, tags,
		urls, s.Confidence, s.Rationale, s.Status, s.ReviewedBy, s.Feedback, s.CreatedBlockID,
		s.CreatedAt, s.ApprovedAt, s.RejectedAt)
	return err
}

func scanSuggestion(row pgx.Row) (*model.Suggestion, error) {
	var (
		s          model.Suggestion
		status     string
		tags, urls []byte
	)
	err := row.Scan(
		&s.ID, &s.JobID, &s.UserID, &s.Title, &s.Slug, &s.Content, &s.BlockType, &s.Language, &tags,
		&urls, &s.Confidence, &s.Rationale, &status, &s.ReviewedBy, &s.Feedback, &s.CreatedBlockID,
		&s.CreatedAt, &s.ApprovedAt, &s.RejectedAt,
	)
	if err != nil {
		return nil, translateScanErr(err)
	}
	s.Status = model.SuggestionStatus(status)
	if len(tags) > 0 {
		_ = json.Unmarshal(tags, &s.Tags)
	}
	if len(urls) > 0 {
		_ = json.Unmarshal(urls, &s.SourceURLs)
	}
	return &s, nil
}

func (r *suggestionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Suggestion, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+suggestionColumns+` FROM ai_suggestions WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanSuggestion(row)
}

func (r *suggestionRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Suggestion, error) {
	rows, err := pickRows(ctx, r.pool, tx,
		`SELECT `+suggestionColumns+` FROM ai_suggestions WHERE job_id=$1 ORDER BY created_at;`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuggestions(rows)
}

func (r *suggestionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, status model.SuggestionStatus, limit int) ([]*model.Suggestion, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = pickRows(ctx, r.pool, tx,
			`SELECT `+suggestionColumns+` FROM ai_suggestions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`,
			userID, limit)
	} else {
		rows, err = pickRows(ctx, r.pool, tx,
			`SELECT `+suggestionColumns+` FROM ai_suggestions WHERE user_id=$1 AND status=$2 ORDER BY created_at DESC LIMIT $3;`,
			userID, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSuggestions(rows)
}

func collectSuggestions(rows pgx.Rows) ([]*model.Suggestion, error) {
	var out []*model.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Approve records the review decision only while the suggestion is still
// pending, so double reviews resolve to a single winner.
func (r *suggestionRepo) Approve(ctx context.Context, tx repository.Tx, id, reviewerID, createdBlockID string, at time.Time) (bool, error) {
	const q = `
UPDATE ai_suggestions SET status='approved', reviewed_by=$2, created_block_id=$3, approved_at=$4
WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, reviewerID, createdBlockID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *suggestionRepo) Reject(ctx context.Context, tx repository.Tx, id, reviewerID, feedback string, at time.Time) (bool, error) {
	const q = `
UPDATE ai_suggestions SET status='rejected', reviewed_by=$2, feedback=$3, rejected_at=$4
WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, reviewerID, feedback, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
