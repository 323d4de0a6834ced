// Package bootstrap builds the pieces shared by the HTTP service and the CLI
// from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jsamuelsen/flashcards/internal/adapters/cache"
	"github.com/jsamuelsen/flashcards/internal/adapters/clients"
	"github.com/jsamuelsen/flashcards/internal/adapters/clients/hygraph"
	"github.com/jsamuelsen/flashcards/internal/app"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

// LoadConfig loads and validates the configuration for profile. An empty
// profile falls back to APP_ENVIRONMENT, then "local".
func LoadConfig(profile string) (*config.Config, error) {
	if profile == "" {
		profile = os.Getenv("APP_ENVIRONMENT")
	}
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger writing to w. The content API token
// is redacted from every record.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
		Secrets: []string{cfg.Hygraph.Token},
	}, w)
}

// Components are the adapters and services built from a configuration.
type Components struct {
	Cache   cache.Store
	Content *hygraph.Client

	Words   *app.WordService
	Quizzes *app.QuizService
	Study   *app.StudyService
}

// Build opens the cache and the content API client and creates the services.
// Callers Close the result.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	var store cache.Store
	if cfg.Cache.Enabled {
		s, err := cache.New(&cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		store = s
	}

	content, err := NewContentClient(cfg, store, logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	svcCfg := &app.ServiceConfig{Logger: logger}
	quizzes := app.NewQuizService(content, content, svcCfg)

	return &Components{
		Cache:   store,
		Content: content,
		Words:   app.NewWordService(content, content, content, svcCfg),
		Quizzes: quizzes,
		Study: app.NewStudyService(content, content, quizzes, app.StudyConfig{
			SessionTTL:  cfg.Study.SessionTTL,
			SpacedOrder: cfg.Study.SpacedOrder,
		}, svcCfg),
	}, nil
}

// NewContentClient builds the Hygraph adapter: a bearer-authenticated client
// for GraphQL and an anonymous one for presigned uploads. A nil store
// disables response caching.
func NewContentClient(cfg *config.Config, store cache.Store, logger *slog.Logger) (*hygraph.Client, error) {
	token := cfg.Hygraph.Token

	api, err := clients.New(&clients.Config{
		BaseURL:     cfg.Hygraph.Endpoint,
		ServiceName: "hygraph",
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating content API client: %w", err)
	}

	uploads, err := clients.New(&clients.Config{
		ServiceName: "hygraph-assets",
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating upload client: %w", err)
	}

	hc := hygraph.Config{
		API:           api,
		Uploads:       uploads,
		CacheTTL:      cfg.Cache.TTL,
		PageSize:      cfg.Hygraph.PageSize,
		MaxPages:      cfg.Hygraph.MaxPages,
		SettleDelay:   cfg.Hygraph.UploadSettleDelay,
		MaxUploadSize: cfg.Hygraph.MaxUploadSize,
		Logger:        logger,
	}
	if store != nil {
		hc.Cache = store
	}

	client, err := hygraph.New(hc)
	if err != nil {
		return nil, fmt.Errorf("creating content store: %w", err)
	}

	return client, nil
}

// RunBackground starts the cache pruner and the session sweeper. They stop
// with ctx.
func (c *Components) RunBackground(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	if c.Cache != nil {
		go cache.RunPruner(ctx, c.Cache, cfg.Cache.TTL, logger)
	}

	go c.Study.Run(ctx, cfg.Study.SweepInterval)
}

// Close releases the cache.
func (c *Components) Close() error {
	if c.Cache == nil {
		return nil
	}

	return c.Cache.Close()
}
