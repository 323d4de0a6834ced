package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/flashcards/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS responses_expires_at ON responses (expires_at);
`

// SQLite keeps cached responses in a file so a restarted service or a CLI
// run can reuse them. expires_at is unix milliseconds, 0 for no expiry.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the cache database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}

	dsn := path
	if path != ":memory:" {
		clean := filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		dsn = clean
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers without SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000", "PRAGMA synchronous = NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Get returns the value at key if it has not expired.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM responses WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("cache entry", key)
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	if expiresAt != 0 && s.now().UnixMilli() >= expiresAt {
		_ = s.Delete(ctx, key)
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	return value, nil
}

// Set upserts value at key.
func (s *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	return nil
}

// Delete removes key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}

	return nil
}

// Clear removes every entry.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (s *SQLite) Prune(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM responses WHERE expires_at != 0 AND expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}

	return int(n), nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *SQLite) Name() string { return "cache" }

// Check pings the database.
func (s *SQLite) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
