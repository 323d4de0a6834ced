package cache

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/flashcards/internal/domain"
	"github.com/jsamuelsen/flashcards/internal/platform/config"
)

type clockSetter func(func() time.Time)

func stores(t *testing.T) map[string]func() (Store, clockSetter) {
	t.Helper()

	return map[string]func() (Store, clockSetter){
		"memory": func() (Store, clockSetter) {
			m := NewMemory()
			return m, func(now func() time.Time) { m.now = now }
		},
		"sqlite": func() (Store, clockSetter) {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })

			return s, func(now func() time.Time) { s.now = now }
		},
	}
}

func TestStores_Contract(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, setClock := open()

			now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
			setClock(func() time.Time { return now })

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, store.Set(ctx, "tags", []byte(`[{"id":"t1"}]`), time.Minute))
			require.NoError(t, store.Set(ctx, "forever", []byte("x"), 0))

			got, err := store.Get(ctx, "tags")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"t1"}]`, string(got))

			require.NoError(t, store.Set(ctx, "tags", []byte(`[]`), time.Minute))
			got, err = store.Get(ctx, "tags")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got), "set overwrites")

			now = now.Add(2 * time.Minute)

			_, err = store.Get(ctx, "tags")
			require.ErrorIs(t, err, domain.ErrNotFound, "expired entries are misses")

			_, err = store.Get(ctx, "forever")
			require.NoError(t, err, "zero ttl never expires")

			require.NoError(t, store.Delete(ctx, "forever"))
			require.NoError(t, store.Delete(ctx, "forever"), "deleting a missing key is fine")
			_, err = store.Get(ctx, "forever")
			require.ErrorIs(t, err, domain.ErrNotFound)

			assert.Equal(t, "cache", store.Name())
			require.NoError(t, store.Check(ctx))
		})
	}
}

func TestStores_ClearAndPrune(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, setClock := open()

			now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
			setClock(func() time.Time { return now })

			require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Second))
			require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))
			require.NoError(t, store.Set(ctx, "c", []byte("3"), 0))

			now = now.Add(time.Minute)

			n, err := store.Prune(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			_, err = store.Get(ctx, "b")
			require.NoError(t, err)

			require.NoError(t, store.Clear(ctx))
			for _, key := range []string{"b", "c"} {
				_, err = store.Get(ctx, key)
				require.ErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, 1, m.Len())
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "categories", []byte(`["grammar"]`), 0))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, "categories")
	require.NoError(t, err)
	assert.JSONEq(t, `["grammar"]`, string(got))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	require.ErrorContains(t, err, "cache path is required")
}

func TestNew_SelectsDriver(t *testing.T) {
	mem, err := New(&config.CacheConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, mem)

	sq, err := New(&config.CacheConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	assert.IsType(t, &SQLite{}, sq)

	_, err = New(&config.CacheConfig{Driver: "redis"})
	require.ErrorContains(t, err, "unknown cache driver")
}

func TestRunPruner_StopsWithContext(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", []byte("v"), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunPruner(ctx, m, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}
