// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/razavioo/notimetolie.com/internal/config"
	"github.com/razavioo/notimetolie.com/internal/domain/model"
	"github.com/razavioo/notimetolie.com/internal/domain/ports/adapter"
	aiAdapters "github.com/razavioo/notimetolie.com/internal/infra/adapters/ai"
	pg "github.com/razavioo/notimetolie.com/internal/infra/db/postgres"
	"github.com/razavioo/notimetolie.com/internal/infra/logging"
	"github.com/razavioo/notimetolie.com/internal/infra/metrics"
	red "github.com/razavioo/notimetolie.com/internal/infra/redis"
	"github.com/razavioo/notimetolie.com/internal/infra/security"
	"github.com/razavioo/notimetolie.com/internal/infra/web"
	"github.com/razavioo/notimetolie.com/internal/infra/worker"
	"github.com/razavioo/notimetolie.com/internal/infra/ws"
	"github.com/razavioo/notimetolie.com/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop provider for keyless configs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	jobRepo := pg.NewJobRepo(pool, tm)
	configRepo := pg.NewConfigurationRepo(pool)
	suggestionRepo := pg.NewSuggestionRepo(pool)
	contentRepo := pg.NewContentRepo(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	quota := red.NewQuotaLimiter(redisClient)

	// ---- Secret vault ----
	vault, err := security.NewEncryptionService(cfg.Security.EncryptionSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Provider adapters ----
	gate := aiAdapters.NewGate(cfg.AI.ConcurrentLimit)
	factory := func(ctx context.Context, c *model.AgentConfiguration, apiKey string) (adapter.AIProvider, error) {
		if cfg.Runtime.Dev && apiKey == "" {
			return aiAdapters.NewNoopProvider(), nil
		}
		p, err := aiAdapters.FromConfiguration(ctx, c, apiKey)
		if err != nil {
			return nil, err
		}
		return gate.Wrap(p), nil
	}

	// ---- Progress channel ----
	auth := web.NewAuth(cfg.Server.JWTSecret)
	hub := ws.NewHub(logger)
	wsHandler := ws.NewHandler(hub, auth.VerifyToken, logger)

	// ---- Workers ----
	workerPool := worker.NewPool(cfg.Worker.Count, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	runner := worker.NewRunner(jobRepo, configRepo, contentRepo, suggestionRepo, tm,
		vault, factory, hub, workerPool, cfg.Worker.JobTimeout, cfg.AI.RequestTimeout, logger)

	sweeper := worker.NewSweeper(jobRepo, runner, cfg.Worker.SweepEvery, cfg.Worker.ReclaimAfter, logger)
	go sweeper.Start(ctx)

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(jobRepo, configRepo, quota, runner, hub, logger)
	configUC := usecase.NewConfigUseCase(configRepo, vault, aiAdapters.Catalog{}, cfg.AI.DefaultModel, logger)
	suggestionUC := usecase.NewSuggestionUseCase(suggestionRepo, contentRepo, tm, logger)

	// ---- HTTP ----
	server := web.NewServer(jobUC, configUC, suggestionUC, wsHandler, auth, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel() // stops sweeper and worker loops
}
