package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/logging"
)

// Operations that change learning state run as Validate → Perform → Verify
// → Archive → Respond. Nothing is written until the input is validated and
// the outcome is known, so a failed lookup never leaves a flag half-updated.

// ExecutionStep names a step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the operation and step a failure happened in.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

// Unwrap returns the cause so domain errors stay matchable.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs Operations with step logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger uses the default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds the functions for each step. Nil steps are skipped and
// pass their zero value along.
type Operation[I, P, V, O any] struct {
	// Name identifies the operation in logs and errors.
	Name string

	// Validate rejects bad input before anything is read or written.
	Validate func(ctx context.Context, input I) error

	// Perform gathers what the operation acts on.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify derives the outcome from what Perform found.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive writes the outcome.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op on input.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
		result    O
		err       error
	)

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, cause error) (O, error) {
		level := slog.LevelError
		if isCallerError(cause) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "operation failed",
			slog.String("step", string(step)),
			slog.Any("error", cause),
		)

		return zero, &ExecutionError{Operation: op.Name, Step: step, Cause: cause}
	}

	if op.Validate != nil {
		if err = op.Validate(ctx, input); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		if performed, err = op.Perform(ctx, input); err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err = op.Archive(ctx, input, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond != nil {
		if result, err = op.Respond(ctx, input, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep extracts the failed step from err.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// isCallerError reports failures caused by the request rather than the service.
func isCallerError(err error) bool {
	return domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) ||
		errors.Is(err, context.Canceled)
}
