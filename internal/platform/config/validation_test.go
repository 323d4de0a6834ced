package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "flashcards", Version: "1.0.0", Environment: "local"},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  DefaultMaxRequestSize,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{MaxFailures: 5, Timeout: 30 * time.Second, HalfOpenLimit: 3},
			Transport:      TransportConfig{MaxIdleConns: 100, MaxIdleConnsPerHost: 10, IdleConnTimeout: 90 * time.Second},
		},
		Hygraph: HygraphConfig{
			Endpoint:          "https://eu-west-2.cdn.hygraph.com/content/abc/master",
			Token:             "hyg-token",
			PageSize:          100,
			UploadSettleDelay: 2 * time.Second,
			MaxUploadSize:     DefaultMaxUploadSize,
		},
		Cache: CacheConfig{Enabled: true, Driver: "memory", TTL: 5 * time.Minute},
		Study: StudyConfig{SessionTTL: 2 * time.Hour, SweepInterval: time.Minute},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing endpoint", func(c *Config) { c.Hygraph.Endpoint = "" }, "hygraph.endpoint is required"},
		{"endpoint not a url", func(c *Config) { c.Hygraph.Endpoint = "not a url" }, "hygraph.endpoint must be a valid URL"},
		{"missing token", func(c *Config) { c.Hygraph.Token = "" }, "hygraph.token is required"},
		{"page size too large", func(c *Config) { c.Hygraph.PageSize = 5000 }, "hygraph.page_size must be at most 1000"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "redis" }, "cache.driver must be one of: memory sqlite"},
		{"sqlite without path", func(c *Config) { c.Cache.Driver = "sqlite" }, "cache.path is required when driver is sqlite"},
		{"session ttl too short", func(c *Config) { c.Study.SessionTTL = time.Second }, "study.session_ttl must be at least 1m"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log.level must be one of"},
		{"bad environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment must be one of"},
		{"log file without path", func(c *Config) { c.Log.File.Enabled = true }, "log.file.path is required when enabled is true"},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.ServiceName = "x" }, "telemetry.endpoint is required"},
		{"retry attempts too high", func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, "client.retry.max_attempts must be at most 10"},
		{"sweep slower than ttl", func(c *Config) { c.Study.SweepInterval = 3 * time.Hour }, "study.sweep_interval must not exceed session_ttl"},
		{"retry intervals inverted", func(c *Config) { c.Client.Retry.InitialInterval = 10 * time.Second }, "client.retry.initial_interval must not exceed max_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_TraceLevelAndSqliteAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "trace"
	cfg.Cache.Driver = "sqlite"
	cfg.Cache.Path = "/tmp/cache.db"

	require.NoError(t, cfg.Validate())
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: "nope"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name")
	assert.Contains(t, err.Error(), "app.version")
	assert.Contains(t, err.Error(), "app.environment")
}

func TestFormatFieldPath(t *testing.T) {
	assert.Equal(t, "hygraph.page_size", formatFieldPath("Config.hygraph.page_size"))
	assert.Equal(t, "port", formatFieldPath("port"))
}

func TestToKey(t *testing.T) {
	for in, want := range map[string]string{
		"Driver":        "driver",
		"SessionTTL":    "session_ttl",
		"MaxPages":      "max_pages",
		"TTL":           "ttl",
		"HTTPTransport": "http_transport",
	} {
		assert.Equal(t, want, toKey(in), in)
	}
}
