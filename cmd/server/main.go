package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"addrcore/internal/config"
	"addrcore/internal/handler"
	"addrcore/internal/logger"
	"addrcore/internal/metrics"
	"addrcore/internal/repository"
	"addrcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.Logging)
	logg.Info("address resolver starting",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("git_commit", GitCommit),
	)

	if err := run(cfg, logg); err != nil {
		logg.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	m := metrics.New()

	// Database is optional: without it the pattern and learned tiers are skipped
	var (
		patternStore    service.PatternStore
		learnedStore    service.LearnedStore
		correctionStore handler.CorrectionStore
		patternRegistry handler.PatternRegistrar
	)
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
		logg,
	)
	if err != nil {
		logg.Warn("PostgreSQL unavailable, pattern and learned corrections disabled", slog.String("error", err.Error()))
	} else {
		defer repo.Close()
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		patternStore, learnedStore = repo, repo
		correctionStore, patternRegistry = repo, repo
		logg.Info("connected to PostgreSQL database")
	}

	// Registry client, optionally behind the Redis cache
	juso := service.NewJusoClient(&cfg.Registry, m, logg)
	var registry service.Registry = juso
	if !juso.IsEnabled() {
		logg.Warn("JUSO_API_KEY is not set, every resolution will be invalid (registry_not_configured)")
	} else {
		cache, err := repository.NewRedisCache(ctx, cfg.Redis)
		switch {
		case err != nil:
			logg.Warn("Redis unavailable, registry cache disabled", slog.String("error", err.Error()))
		case cache != nil:
			defer cache.Close()
			registry = service.NewCachedRegistry(juso, cache, cfg.Redis.CacheTTL, m, logg)
			logg.Info("registry cache enabled", slog.Duration("ttl", cfg.Redis.CacheTTL))
		}
	}

	// AI normalizer
	var aiNormalizer service.AINormalizer
	if cfg.OpenAI.Enabled {
		openaiClient := service.NewOpenAIClient(&cfg.OpenAI, logg)
		aiNormalizer = service.NewAIDetailNormalizer(openaiClient, logg)
		logg.Info("OpenAI client initialized",
			slog.String("api_base", cfg.OpenAI.APIBase),
			slog.String("chat_model", cfg.OpenAI.ChatModel),
			slog.Bool("fallback_enabled", cfg.Validation.AIFallbackEnabled),
		)
	} else if cfg.Validation.AIFallbackEnabled {
		logg.Warn("AI_FALLBACK_ENABLED is set but OPENAI_API_KEY is missing, AI fallback disabled")
	}

	// Initialize services
	resolver := service.NewCandidateResolver(registry, service.NewRanker(service.DefaultScoreWeights()), m, logg)
	validator := service.NewDetailValidator(patternStore, learnedStore, aiNormalizer, m, logg)
	addressService := service.NewAddressService(
		resolver,
		validator,
		service.ValidatorOptions{
			AIEnabled:             cfg.Validation.AIFallbackEnabled && aiNormalizer != nil,
			AIConfidenceThreshold: cfg.Validation.AIConfidenceThreshold,
		},
		service.BulkOptions{
			Concurrency:      cfg.Bulk.Concurrency,
			BatchSize:        cfg.Bulk.BatchSize,
			BatchPause:       cfg.Bulk.BatchPause,
			MaxAddressLength: cfg.Bulk.MaxAddressLength,
		},
		m,
		logg,
	)

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		Logger:         logg,
		Metrics:        promhttp.Handler(),
		Address:        handler.NewAddressHandler(addressService, cfg.Bulk.MaxItems),
		Corrections:    handler.NewCorrectionHandler(correctionStore),
		Patterns:       handler.NewPatternHandler(patternRegistry),
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("starting server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logg.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logg.Info("server stopped")
	return nil
}
