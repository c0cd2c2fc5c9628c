package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/savepoint/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed preference persistence.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a preferences SQLite store.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetInt returns the integer stored under key, or fallback when unset.
func (s *Store) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	if s == nil || s.sqlDB == nil {
		return fallback, fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback, fmt.Errorf("preference key is required")
	}

	var value int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT int_value FROM preferences WHERE pref_key = ?`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("get preference: %w", err)
	}
	return int(value), nil
}

// SetInt upserts the integer stored under key.
func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("preference key is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO preferences (pref_key, int_value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(pref_key) DO UPDATE SET
		   int_value = excluded.int_value,
		   updated_at = excluded.updated_at`,
		key,
		int64(value),
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

var _ storage.Preferences = (*Store)(nil)
