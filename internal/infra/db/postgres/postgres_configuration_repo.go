// File: internal/infra/db/postgres/postgres_configuration_repo.go
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

var _ repository.ConfigurationRepository = (*configurationRepo)(nil)

type configurationRepo struct {
	pool *pgxpool.Pool
}

func NewConfigurationRepo(pool *pgxpool.Pool) *configurationRepo {
	return &configurationRepo{pool: pool}
}

const configColumns = `id, user_id, name, description, provider, model_name, api_endpoint, api_key_encrypted,
temperature, max_tokens, system_prompt, can_create_blocks, can_edit_blocks, can_search_web,
daily_request_limit, active, created_at, updated_at`

func (r *configurationRepo) Save(ctx context.Context, tx repository.Tx, cfg *model.AgentConfiguration) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	const q = `
INSERT INTO agent_configurations (` + configColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18);`
	_, err := execSQL(ctx, r.pool, tx, q,
		cfg.ID, cfg.UserID, cfg.Name, cfg.Description, cfg.Provider, cfg.ModelName, cfg.APIEndpoint, cfg.APIKeyEncrypted,
		cfg.Temperature, cfg.MaxTokens, cfg.SystemPrompt, cfg.CanCreateBlocks, cfg.CanEditBlocks, cfg.CanSearchWeb,
		cfg.DailyRequestLimit, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt)
	return err
}

func scanConfiguration(row pgx.Row) (*model.AgentConfiguration, error) {
	var c model.AgentConfiguration
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Provider, &c.ModelName, &c.APIEndpoint, &c.APIKeyEncrypted,
		&c.Temperature, &c.MaxTokens, &c.SystemPrompt, &c.CanCreateBlocks, &c.CanEditBlocks, &c.CanSearchWeb,
		&c.DailyRequestLimit, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, translateScanErr(err)
	}
	return &c, nil
}

func (r *configurationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AgentConfiguration, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+configColumns+` FROM agent_configurations WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanConfiguration(row)
}

func (r *configurationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.AgentConfiguration, error) {
	rows, err := pickRows(ctx, r.pool, tx,
		`SELECT `+configColumns+` FROM agent_configurations WHERE user_id=$1 ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AgentConfiguration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *configurationRepo) Update(ctx context.Context, tx repository.Tx, cfg *model.AgentConfiguration) error {
	cfg.UpdatedAt = time.Now()
	const q = `
UPDATE agent_configurations SET
  name=$2, description=$3, provider=$4, model_name=$5, api_endpoint=$6, api_key_encrypted=$7,
  temperature=$8, max_tokens=$9, system_prompt=$10,
  can_create_blocks=$11, can_edit_blocks=$12, can_search_web=$13,
  daily_request_limit=$14, active=$15, updated_at=$16
WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q,
		cfg.ID, cfg.Name, cfg.Description, cfg.Provider, cfg.ModelName, cfg.APIEndpoint, cfg.APIKeyEncrypted,
		cfg.Temperature, cfg.MaxTokens, cfg.SystemPrompt,
		cfg.CanCreateBlocks, cfg.CanEditBlocks, cfg.CanSearchWeb,
		cfg.DailyRequestLimit, cfg.Active, cfg.UpdatedAt)
	return err
}

// Deactivate is a soft delete scoped to the owner. Running jobs keep their
// already-loaded snapshot; new submissions against the row are refused.
func (r *configurationRepo) Deactivate(ctx context.Context, tx repository.Tx, id, userID string) (bool, error) {
	const q = `
UPDATE agent_configurations SET active=FALSE, updated_at=NOW()
WHERE id=$1 AND user_id=$2 AND active=TRUE;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
