package storage

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "panel.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSQLiteStore_SetGet(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("access_token", "abc123"))

	value, ok, err := s.Get("access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", value)

	// Upsert overwrites.
	require.NoError(t, s.Set("access_token", "def456"))
	value, _, err = s.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "def456", value)
}

func TestSQLiteStore_SetManyDeleteMany(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetMany(map[string]string{
		"access_token":  "tok",
		"user_data":     `{"id":1}`,
		"token_expires": "1700000000000",
	}))

	require.NoError(t, s.DeleteMany("access_token", "user_data", "token_expires"))

	for _, key := range []string{"access_token", "user_data", "token_expires"} {
		_, ok, err := s.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q should be gone", key)
	}
}

func TestMemoryStore_MatchesContract(t *testing.T) {
	var s Store = NewMemory()

	require.NoError(t, s.SetMany(map[string]string{"a": "1", "b": "2"}))

	value, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, s.DeleteMany("a", "b", "never-existed"))

	_, ok, err = s.Get("b")
	require.NoError(t, err)
	assert.False(t, ok)
}
