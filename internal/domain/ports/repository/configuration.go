package repository

import (
	"context"

	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

type ConfigurationRepository interface {
	Save(ctx context.Context, tx Tx, cfg *model.AgentConfiguration) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.AgentConfiguration, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.AgentConfiguration, error)
	Update(ctx context.Context, tx Tx, cfg *model.AgentConfiguration) error

	// Deactivate soft-deletes: the row is kept so job history stays intact.
	Deactivate(ctx context.Context, tx Tx, id, userID string) (bool, error)
}
