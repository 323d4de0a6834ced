// Package main runs the flashcards study API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/flashcards/internal/adapters/http"
	"github.com/jsamuelsen/flashcards/internal/adapters/http/handlers"
	"github.com/jsamuelsen/flashcards/internal/bootstrap"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
	"github.com/jsamuelsen/flashcards/internal/platform/telemetry"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cfg, os.Stdout)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	comps, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := comps.Close(); closeErr != nil {
			logger.Error("closing cache", slog.Any("error", closeErr))
		}
	}()

	// The content API gates readiness; a broken cache only degrades it.
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(comps.Content); err != nil {
		return fmt.Errorf("registering content API health check: %w", err)
	}
	if comps.Cache != nil {
		if err := healthRegistry.Register(ports.Optional(comps.Cache)); err != nil {
			return fmt.Errorf("registering cache health check: %w", err)
		}
	}

	comps.RunBackground(ctx, cfg, logger)

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	if u, err := url.Parse(cfg.Hygraph.Endpoint); err == nil {
		buildInfo.ContentAPI = u.Host
	}

	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		AuthConfig:     &cfg.Auth,
		AppConfig:      &cfg.App,
		HealthHandler:  handlers.NewHealthHandler(healthRegistry, buildInfo, comps.Study),
		Words:          handlers.NewWordHandler(comps.Words),
		Quizzes:        handlers.NewQuizHandler(comps.Quizzes),
		Sessions:       handlers.NewSessionHandler(comps.Study),
		Timeouts:       http.DefaultTimeouts(),
		MaxBodySize:    cfg.Server.MaxRequestSize,
		UploadBodySize: cfg.Server.MaxRequestSize + handlers.MaxImages*cfg.Hygraph.MaxUploadSize,
	})

	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a signal or a server error, then drains
// in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
