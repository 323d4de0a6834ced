package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelLimit_KeepsOrder(t *testing.T) {
	results, err := ParallelLimit(context.Background(), 2,
		func(context.Context) (int, error) { time.Sleep(5 * time.Millisecond); return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 3, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestParallelLimit_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	fn := func(context.Context) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)

		return struct{}{}, nil
	}

	_, err := ParallelLimit(context.Background(), 2, fn, fn, fn, fn, fn)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestParallelLimit_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")

	_, err := ParallelLimit(context.Background(), 0,
		func(context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	)
	require.ErrorIs(t, err, boom)
}

func TestParallel2(t *testing.T) {
	n, s, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 7, nil },
		func(context.Context) (string, error) { return "seven", nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "seven", s)

	_, _, err = Parallel2(context.Background(),
		func(context.Context) (int, error) { return 0, errors.New("count failed") },
		func(context.Context) (string, error) { return "ok", nil },
	)
	require.ErrorContains(t, err, "count failed")
}

func TestParallelPartial_RunsEverything(t *testing.T) {
	boom := errors.New("boom")

	results := ParallelPartial(context.Background(), 1,
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { return "c", nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Value)
	require.ErrorIs(t, firstError(results), boom)
}
