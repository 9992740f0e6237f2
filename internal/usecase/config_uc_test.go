// File: internal/usecase/config_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/domain"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
)

func newConfigUC() (*ConfigUseCase, *memConfigRepo) {
	repo := newMemConfigRepo()
	log := zerolog.Nop()
	return NewConfigUseCase(repo, plainVault{}, staticCatalog{}, "gpt-4o-mini", &log), repo
}

func validInput() ConfigInput {
	return ConfigInput{
		Name:      "writing agent",
		Provider:  "groq",
		ModelName: "llama-3.3-70b-versatile",
		APIKey:    "gsk-secret",
	}
}

func TestCreateEncryptsKeyAndAppliesDefaults(t *testing.T) {
	uc, _ := newConfigUC()

	cfg, err := uc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKeyEncrypted != "enc:gsk-secret" {
		t.Fatalf("stored key %q, plaintext must never be persisted", cfg.APIKeyEncrypted)
	}
	if cfg.Temperature != model.DefaultTemperature ||
		cfg.MaxTokens != model.DefaultMaxTokens ||
		cfg.DailyRequestLimit != model.DefaultDailyRequestLimit {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if !cfg.Active {
		t.Fatal("new configuration must be active")
	}
}

func TestCreateFallsBackToDefaultModel(t *testing.T) {
	uc, _ := newConfigUC()
	in := validInput()
	in.ModelName = "  "

	cfg, err := uc.Create(context.Background(), "u1", in)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ModelName != "gpt-4o-mini" {
		t.Fatalf("model = %q, want the configured default", cfg.ModelName)
	}
}

func TestCreateValidation(t *testing.T) {
	uc, _ := newConfigUC()
	ctx := context.Background()

	in := validInput()
	in.Provider = "hal9000"
	if _, err := uc.Create(ctx, "u1", in); !errors.Is(err, domain.ErrUnknownProvider) {
		t.Fatalf("unknown provider: %v", err)
	}

	in = validInput()
	in.Provider = "azure"
	if _, err := uc.Create(ctx, "u1", in); !errors.Is(err, domain.ErrEndpointRequired) {
		t.Fatalf("azure without endpoint: %v", err)
	}
	in.APIEndpoint = "https://example.openai.azure.com/v1"
	if _, err := uc.Create(ctx, "u1", in); err != nil {
		t.Fatalf("azure with endpoint: %v", err)
	}

	in = validInput()
	in.Name = " "
	if _, err := uc.Create(ctx, "u1", in); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank name: %v", err)
	}

	bad := 3.5
	in = validInput()
	in.Temperature = &bad
	if _, err := uc.Create(ctx, "u1", in); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("temperature out of range: %v", err)
	}
}

func TestUpdateKeepsKeyWhenBlank(t *testing.T) {
	uc, _ := newConfigUC()
	ctx := context.Background()
	cfg, _ := uc.Create(ctx, "u1", validInput())

	in := validInput()
	in.APIKey = ""
	in.Name = "renamed"
	updated, err := uc.Update(ctx, "u1", cfg.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("name = %q", updated.Name)
	}
	if updated.APIKeyEncrypted != "enc:gsk-secret" {
		t.Fatal("blank key must keep the stored credential")
	}

	in.APIKey = "gsk-rotated"
	updated, err = uc.Update(ctx, "u1", cfg.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.APIKeyEncrypted != "enc:gsk-rotated" {
		t.Fatal("non-blank key must rotate the credential")
	}
}

func TestUpdateForeignConfigFails(t *testing.T) {
	uc, _ := newConfigUC()
	ctx := context.Background()
	cfg, _ := uc.Create(ctx, "u1", validInput())

	if _, err := uc.Update(ctx, "u2", cfg.ID, validInput()); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	uc, repo := newConfigUC()
	ctx := context.Background()
	cfg, _ := uc.Create(ctx, "u1", validInput())

	if err := uc.Deactivate(ctx, "u1", cfg.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ := repo.FindByID(ctx, nil, cfg.ID)
	if stored.Active {
		t.Fatal("configuration still active")
	}
	// second deactivate and foreign deactivate both report not found
	if err := uc.Deactivate(ctx, "u1", cfg.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("repeat: %v", err)
	}
	if err := uc.Deactivate(ctx, "u2", cfg.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign: %v", err)
	}
}
