package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := OpenSQLite(context.Background(), SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), SQLiteConfig{Path: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSQLiteBackend_NilDB(t *testing.T) {
	_, err := NewSQLiteBackend(context.Background(), nil)
	assert.Error(t, err)
}

func TestSQLiteBackend_InsertAndAll(t *testing.T) {
	ctx := context.Background()
	b := newMemoryBackend(t)

	id1, err := b.Insert(ctx, "go", "goroutines")
	require.NoError(t, err)
	id2, err := b.Insert(ctx, "", "")
	require.NoError(t, err)
	id3, err := b.Insert(ctx, "go", "goroutines")
	require.NoError(t, err)

	assert.Less(t, id1, id2)
	assert.Less(t, id2, id3)

	all, err := b.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{ID: id1, Tag: "go", Contents: "goroutines"},
		{ID: id2, Tag: "", Contents: ""},
		{ID: id3, Tag: "go", Contents: "goroutines"},
	}, all)

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLiteBackend_AllEmpty(t *testing.T) {
	all, err := newMemoryBackend(t).All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSQLiteBackend_ClearDoesNotReuseIDs(t *testing.T) {
	ctx := context.Background()
	b := newMemoryBackend(t)

	_, err := b.Insert(ctx, "a", "1")
	require.NoError(t, err)
	last, err := b.Insert(ctx, "b", "2")
	require.NoError(t, err)

	removed, err := b.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	next, err := b.Insert(ctx, "c", "3")
	require.NoError(t, err)
	assert.Greater(t, next, last)
}

func TestSQLiteBackend_FilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "knowledge.db")
	cfg := SQLiteConfig{Path: path, BusyTimeout: time.Second, MaxOpenConns: 2}

	b, err := OpenSQLite(ctx, cfg)
	require.NoError(t, err)
	id, err := b.Insert(ctx, "persist", "durable contents")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	reopened, err := OpenSQLite(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Record{{ID: id, Tag: "persist", Contents: "durable contents"}}, all)
}

func TestSQLiteBackend_ClosedReturnsStorageErrors(t *testing.T) {
	ctx := context.Background()
	b, err := OpenSQLite(ctx, SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, err = b.All(ctx)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PhaseRead, se.Phase)

	_, err = b.Insert(ctx, "t", "c")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, PhaseWrite, se.Phase)
	assert.False(t, se.Retryable())
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(SQLiteConfig{Path: ":memory:"}))

	dsn := sqliteDSN(SQLiteConfig{Path: "/tmp/k.db", BusyTimeout: 2 * time.Second})
	assert.Contains(t, dsn, "file:/tmp/k.db?")
	assert.Contains(t, dsn, "_busy_timeout=2000")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_synchronous=FULL")

	tests := []struct {
		path string
		want string
	}{
		{"/tmp/kb#1.db", "file:/tmp/kb%231.db?"},
		{"/tmp/what?.db", "file:/tmp/what%3F.db?"},
		{"/tmp/100%.db", "file:/tmp/100%25.db?"},
		{"/tmp/my notes.db", "file:/tmp/my%20notes.db?"},
		{"data/k.db", "file:data/k.db?"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dsn := sqliteDSN(SQLiteConfig{Path: tt.path, BusyTimeout: time.Second})
			assert.True(t, strings.HasPrefix(dsn, tt.want), "dsn %q", dsn)
			assert.Equal(t, 1, strings.Count(dsn, "?"))
			assert.NotContains(t, dsn, "#")
			assert.Contains(t, dsn, "_journal_mode=WAL")
		})
	}
}

func TestOpenSQLite_SpecialCharactersInPath(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "kb#1?.db")

	b, err := OpenSQLite(ctx, SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Insert(ctx, "tag", "contents")
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "database must be created under its full name")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "kb#1?.db"), "unexpected file %q", e.Name())
	}

	var mode string
	require.NoError(t, b.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
