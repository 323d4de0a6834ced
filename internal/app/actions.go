package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

// ErrAlreadyCommitted is returned when a Plan is changed or run after Commit.
var ErrAlreadyCommitted = errors.New("plan already committed")

// Action is one write in a multi-step create.
type Action interface {
	// Execute performs the write.
	Execute(ctx context.Context) error

	// Rollback undoes whatever Execute managed to do. It is also called for
	// the action whose Execute failed, so it must cope with partial work.
	Rollback(ctx context.Context) error

	// Description names the action in errors and logs.
	Description() string
}

type funcAction struct {
	description string
	execute     func(context.Context) error
	rollback    func(context.Context) error
}

// NewAction builds an Action from functions. A nil rollback does nothing.
func NewAction(description string, execute, rollback func(context.Context) error) Action {
	return &funcAction{description: description, execute: execute, rollback: rollback}
}

func (a *funcAction) Execute(ctx context.Context) error { return a.execute(ctx) }

func (a *funcAction) Rollback(ctx context.Context) error {
	if a.rollback == nil {
		return nil
	}

	return a.rollback(ctx)
}

func (a *funcAction) Description() string { return a.description }

// Plan runs staged actions in order. When one fails, it and every action
// before it are rolled back in reverse order.
type Plan struct {
	mu        sync.Mutex
	actions   []Action
	committed bool
	logger    *slog.Logger
}

// NewPlan creates an empty plan that logs rollback failures to logger.
func NewPlan(logger *slog.Logger) *Plan {
	return &Plan{logger: logger}
}

// Add stages actions for Commit.
func (p *Plan) Add(actions ...Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed {
		return ErrAlreadyCommitted
	}

	p.actions = append(p.actions, actions...)

	return nil
}

// Commit executes the staged actions. A plan can be committed once.
func (p *Plan) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.committed {
		return ErrAlreadyCommitted
	}
	p.committed = true

	for i, action := range p.actions {
		if err := action.Execute(ctx); err != nil {
			p.rollback(ctx, p.actions[:i+1])

			return fmt.Errorf("%s: %w", action.Description(), err)
		}
	}

	return nil
}

// Actions returns a copy of the staged actions.
func (p *Plan) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]Action, len(p.actions))
	copy(result, p.actions)

	return result
}

// rollback undoes actions newest first. Cleanup runs even when the caller's
// context was canceled.
func (p *Plan) rollback(ctx context.Context, actions []Action) {
	logger := logging.FromContextOr(ctx, p.logger)
	ctx = context.WithoutCancel(ctx)

	for i := len(actions) - 1; i >= 0; i-- {
		if err := actions[i].Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "rollback failed",
				slog.String("action", actions[i].Description()),
				slog.Any("error", err),
			)
		}
	}
}
