// Package hygraph adapts the Hygraph content API to the content ports.
//
// Hygraph types never leave this package: responses are decoded into local
// DTOs and translated to domain values, and every failure (transport, HTTP
// status, GraphQL "errors") is mapped onto the domain error vocabulary.
package hygraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/flashcards/internal/adapters/clients"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
	"github.com/jsamuelsen/flashcards/internal/ports"
)

const serviceName = "hygraph"

// Config wires a Client.
type Config struct {
	// API posts GraphQL documents. Its BaseURL is the content endpoint and
	// its AuthFunc adds the bearer token.
	API *clients.Client

	// Uploads posts files to presigned storage URLs. It must not add
	// credentials of its own.
	Uploads *clients.Client

	// Cache holds query responses. Nil disables caching.
	Cache    ports.Cache
	CacheTTL time.Duration

	// PageSize is the "first" argument of connection queries. MaxPages
	// stops a walk early; zero means no limit.
	PageSize int
	MaxPages int

	// SettleDelay is how long to wait between uploading a file and
	// publishing its asset.
	SettleDelay time.Duration

	// MaxUploadSize rejects larger files. Zero means no limit.
	MaxUploadSize int64

	Logger *slog.Logger
}

// Client implements ports.ContentStore against Hygraph.
type Client struct {
	api     *clients.Client
	uploads *clients.Client
	cache   ports.Cache
	ttl     time.Duration

	// gen counts invalidations. A read fetched across one is not cached.
	// cacheMu makes the generation check and the cache write one step with
	// respect to invalidate.
	cacheMu sync.RWMutex
	gen     uint64

	pageSize      int
	maxPages      int
	settleDelay   time.Duration
	maxUploadSize int64

	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

var (
	_ ports.ContentStore  = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// New builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.API == nil {
		return nil, errors.New("hygraph: API client is required")
	}
	if cfg.Uploads == nil {
		return nil, errors.New("hygraph: upload client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultHygraphPageSize
	}

	return &Client{
		api:           cfg.API,
		uploads:       cfg.Uploads,
		cache:         cfg.Cache,
		ttl:           cfg.CacheTTL,
		pageSize:      pageSize,
		maxPages:      cfg.MaxPages,
		settleDelay:   cfg.SettleDelay,
		maxUploadSize: cfg.MaxUploadSize,
		logger:        logger.With(slog.String("component", "hygraph")),
		sleep:         sleepContext,
	}, nil
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return serviceName
}

// Check runs the smallest valid query, bypassing the cache.
func (c *Client) Check(ctx context.Context) error {
	_, err := c.execute(ctx, call{name: "health check"}, healthQuery, nil)

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
