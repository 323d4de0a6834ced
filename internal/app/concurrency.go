package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ParallelLimit runs fns concurrently, at most limit at a time, and returns
// their results in argument order. A limit of zero or less means no limit.
// The first error cancels the context passed to the remaining functions.
//
// Example:
//
//	_, err := ParallelLimit(ctx, 4,
//	    func(ctx context.Context) (struct{}, error) { return struct{}{}, store.PublishQuizOption(ctx, "o1") },
//	    func(ctx context.Context) (struct{}, error) { return struct{}{}, store.PublishQuizOption(ctx, "o2") },
//	)
func ParallelLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(ctx)
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("parallel execution failed: %w", err)
	}

	return results, nil
}

// Parallel2 runs two functions concurrently and returns both results or the
// first error.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error

		result1, fnErr = fn1(ctx)

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		result2, fnErr = fn2(ctx)

		return fnErr
	})

	err = g.Wait()
	if err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, nil
}

// PartialResult is the outcome of one function run by ParallelPartial.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial runs every function to completion, at most limit at a
// time, and reports each outcome in argument order. Failures do not cancel
// the others, so callers can undo whatever did succeed.
func ParallelPartial[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]PartialResult[T], len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			value, err := fn(ctx)
			results[i] = PartialResult[T]{Value: value, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// firstError returns the first failure in results, or nil.
func firstError[T any](results []PartialResult[T]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}

	return nil
}
