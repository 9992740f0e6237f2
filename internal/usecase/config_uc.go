// File: internal/usecase/config_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/repository"
)

// Encryptor is the secret vault as seen from the configuration surface.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ProviderCatalog answers whether a provider identifier is supported and
// whether it needs an explicit endpoint.
type ProviderCatalog interface {
	Known(id string) bool
	NeedsEndpoint(id string) bool
}

// ConfigInput carries the mutable fields of an agent configuration. APIKey is
// plaintext in flight and encrypted before it touches storage.
type ConfigInput struct {
	Name        string
	Description string

	Provider    string
	ModelName   string
	APIEndpoint string
	APIKey      string

	Temperature  *float64
	MaxTokens    *int
	SystemPrompt string

	CanCreateBlocks   bool
	CanEditBlocks     bool
	CanSearchWeb      bool
	DailyRequestLimit *int
}

// ConfigUseCase owns agent configuration CRUD. Plaintext keys exist only
// inside Create/Update; everything handed back carries ciphertext.
type ConfigUseCase struct {
	configs      repository.ConfigurationRepository
	vault        Encryptor
	catalog      ProviderCatalog
	defaultModel string
	log          *zerolog.Logger
}

func NewConfigUseCase(configs repository.ConfigurationRepository, vault Encryptor, catalog ProviderCatalog, defaultModel string, log *zerolog.Logger) *ConfigUseCase {
	return &ConfigUseCase{configs: configs, vault: vault, catalog: catalog, defaultModel: defaultModel, log: log}
}

func (uc *ConfigUseCase) validate(in *ConfigInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Provider = strings.ToLower(strings.TrimSpace(in.Provider))
	in.ModelName = strings.TrimSpace(in.ModelName)
	if in.ModelName == "" {
		in.ModelName = uc.defaultModel
	}

	if in.Name == "" || in.ModelName == "" {
		return domain.ErrInvalidArgument
	}
	if !uc.catalog.Known(in.Provider) {
		return domain.ErrUnknownProvider
	}
	if uc.catalog.NeedsEndpoint(in.Provider) && strings.TrimSpace(in.APIEndpoint) == "" {
		return domain.ErrEndpointRequired
	}
	if in.Temperature != nil && (*in.Temperature < 0 || *in.Temperature > 2) {
		return domain.ErrInvalidArgument
	}
	if in.MaxTokens != nil && *in.MaxTokens <= 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// Create validates, encrypts the credential and persists a new active
// configuration with defaults filled in.
func (uc *ConfigUseCase) Create(ctx context.Context, userID string, in ConfigInput) (*model.AgentConfiguration, error) {
	if err := uc.validate(&in); err != nil {
		return nil, err
	}

	encrypted, err := uc.vault.Encrypt(in.APIKey)
	if err != nil {
		return nil, err
	}

	cfg := &model.AgentConfiguration{
		UserID:          userID,
		Name:            in.Name,
		Description:     in.Description,
		Provider:        in.Provider,
		ModelName:       in.ModelName,
		APIEndpoint:     strings.TrimSpace(in.APIEndpoint),
		APIKeyEncrypted: encrypted,
		SystemPrompt:    in.SystemPrompt,

		Temperature:       model.DefaultTemperature,
		MaxTokens:         model.DefaultMaxTokens,
		DailyRequestLimit: model.DefaultDailyRequestLimit,

		CanCreateBlocks: in.CanCreateBlocks,
		CanEditBlocks:   in.CanEditBlocks,
		CanSearchWeb:    in.CanSearchWeb,
		Active:          true,
	}
	if in.Temperature != nil {
		cfg.Temperature = *in.Temperature
	}
	if in.MaxTokens != nil {
		cfg.MaxTokens = *in.MaxTokens
	}
	if in.DailyRequestLimit != nil {
		cfg.DailyRequestLimit = *in.DailyRequestLimit
	}

	if err := uc.configs.Save(ctx, nil, cfg); err != nil {
		return nil, err
	}
	uc.log.Info().Str("config_id", cfg.ID).Str("provider", cfg.Provider).Msg("configuration created")
	return cfg, nil
}

// Get returns one configuration owned by userID.
func (uc *ConfigUseCase) Get(ctx context.Context, userID, configID string) (*model.AgentConfiguration, error) {
	cfg, err := uc.configs.FindByID(ctx, nil, configID)
	if err != nil {
		return nil, err
	}
	if cfg.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return cfg, nil
}

// List returns every configuration of userID, inactive ones included.
func (uc *ConfigUseCase) List(ctx context.Context, userID string) ([]*model.AgentConfiguration, error) {
	return uc.configs.ListByUser(ctx, nil, userID)
}

// Update rewrites the mutable fields. An empty APIKey keeps the stored
// credential; a non-empty one replaces it.
func (uc *ConfigUseCase) Update(ctx context.Context, userID, configID string, in ConfigInput) (*model.AgentConfiguration, error) {
	cfg, err := uc.Get(ctx, userID, configID)
	if err != nil {
		return nil, err
	}
	if err := uc.validate(&in); err != nil {
		return nil, err
	}

	cfg.Name = in.Name
	cfg.Description = in.Description
	cfg.Provider = in.Provider
	cfg.ModelName = in.ModelName
	cfg.APIEndpoint = strings.TrimSpace(in.APIEndpoint)
	cfg.SystemPrompt = in.SystemPrompt
	cfg.CanCreateBlocks = in.CanCreateBlocks
	cfg.CanEditBlocks = in.CanEditBlocks
	cfg.CanSearchWeb = in.CanSearchWeb
	if in.Temperature != nil {
		cfg.Temperature = *in.Temperature
	}
	if in.MaxTokens != nil {
		cfg.MaxTokens = *in.MaxTokens
	}
	if in.DailyRequestLimit != nil {
		cfg.DailyRequestLimit = *in.DailyRequestLimit
	}
	if in.APIKey != "" {
		encrypted, err := uc.vault.Encrypt(in.APIKey)
		if err != nil {
			return nil, err
		}
		cfg.APIKeyEncrypted = encrypted
	}

	if err := uc.configs.Update(ctx, nil, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Deactivate soft-deletes a configuration. Idempotent failure: deactivating
// an already inactive (or foreign) configuration yields ErrNotFound.
func (uc *ConfigUseCase) Deactivate(ctx context.Context, userID, configID string) error {
	ok, err := uc.configs.Deactivate(ctx, nil, configID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	uc.log.Info().Str("config_id", configID).Msg("configuration deactivated")
	return nil
}
