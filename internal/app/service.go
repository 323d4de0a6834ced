// Package app contains the study use cases: managing words and quizzes and
// driving learning and review sessions over them.
//
// Services depend on the ports interfaces only. They validate input, fan
// out to the content store concurrently where calls are independent, and
// undo partial writes when a multi-step create fails.
package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

// DefaultConcurrency bounds concurrent uploads and option creates.
const DefaultConcurrency = 4

// ServiceConfig holds optional settings shared by the services.
type ServiceConfig struct {
	Logger *slog.Logger

	// Concurrency bounds concurrent writes to the content store.
	Concurrency int

	// Now returns the current time. Tests pin it.
	Now func() time.Time
}

func (c *ServiceConfig) resolve() ServiceConfig {
	var out ServiceConfig
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	if out.Now == nil {
		out.Now = time.Now
	}

	return out
}

// requireID rejects blank identifiers before they reach the store.
func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(field, "is required")
	}

	return nil
}
