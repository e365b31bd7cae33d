package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store is the durable key/value port the panel persists client state into:
// the credential keys, plus the form pre-fill caches. DeleteMany must remove
// all given keys in one transaction so a credential clear can never leave a
// torn state behind.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
	DeleteMany(keys ...string) error
	Close() error
}

// SQLiteStore keeps key/value pairs in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the panel database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open panel db: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) init() error {
	migrationSQL := `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

	if _, err := s.db.Exec(migrationSQL); err != nil {
		return fmt.Errorf("init panel db: %w", err)
	}

	s.logger.Debug("panel db ready")

	return nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string

	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}

	return nil
}

// SetMany writes all pairs in one transaction.
func (s *SQLiteStore) SetMany(values map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set many: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.Exec(
			"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
			key, value,
		); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}

	return tx.Commit()
}

// DeleteMany removes all given keys in one transaction: either every key is
// gone afterwards or none are.
func (s *SQLiteStore) DeleteMany(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete many: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("delete %q: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
