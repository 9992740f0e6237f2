// File: internal/infra/db/postgres/postgres_content_repo.go
package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

var _ repository.ContentRepository = (*contentRepo)(nil)

type contentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *contentRepo {
	return &contentRepo{pool: pool}
}

// FindRelated does a case-insensitive substring match on published titles.
// Deliberately simple; full-text search is not worth its weight for the
// handful of context items a prompt can absorb.
func (r *contentRepo) FindRelated(ctx context.Context, query string, limit int) ([]model.RelatedContent, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `
SELECT id, title, slug, LEFT(content, 200), tags
FROM content_nodes
WHERE published = TRUE AND title ILIKE '%' || $1 || '%'
ORDER BY updated_at DESC
LIMIT $2;`
	rows, err := r.pool.Query(ctx, q, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RelatedContent
	for rows.Next() {
		var (
			c    model.RelatedContent
			tags []byte
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Preview, &tags); err != nil {
			return nil, translateScanErr(err)
		}
		if len(tags) > 0 {
			_ = json.Unmarshal(tags, &c.Tags)
		}
		c.URL = "/content/" + c.Slug
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ContentNode, error) {
	row, err := pickRow(ctx, r.pool, tx, `
SELECT id, title, slug, content, block_type, language, published
FROM content_nodes WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	var n model.ContentNode
	if err := row.Scan(&n.ID, &n.Title, &n.Slug, &n.Content, &n.BlockType, &n.Language, &n.Published); err != nil {
		return nil, translateScanErr(err)
	}
	return &n, nil
}

// CreateFromSuggestion materializes an approved suggestion as an unpublished
// draft node and returns the new node id.
func (r *contentRepo) CreateFromSuggestion(ctx context.Context, tx repository.Tx, s *model.Suggestion) (string, error) {
	id := uuid.NewString()
	tags, _ := json.Marshal(s.Tags)
	const q = `
INSERT INTO content_nodes (id, title, slug, content, block_type, language, tags, published, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,NOW(),NOW());`
	if _, err := execSQL(ctx, r.pool, tx, q,
		id, s.Title, s.Slug, s.Content, s.BlockType, s.Language, tags); err != nil {
		return "", err
	}
	return id, nil
}
