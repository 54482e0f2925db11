package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite3" database/sql driver.
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteDriverName = "sqlite3"
	sqliteMemoryPath = ":memory:"

	sqliteCreateKnowledge = "CREATE TABLE IF NOT EXISTS knowledge (" +
		"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"tag TEXT NOT NULL, " +
		"contents TEXT NOT NULL" +
		")"

	sqliteCreateTagIndex = "CREATE INDEX IF NOT EXISTS idx_knowledge_tag ON knowledge (tag)"

	sqliteInsert    = "INSERT INTO knowledge (tag, contents) VALUES (?, ?)"
	sqliteSelectAll = "SELECT id, tag, contents FROM knowledge ORDER BY id ASC"
	sqliteCount     = "SELECT COUNT(*) FROM knowledge"
	sqliteDeleteAll = "DELETE FROM knowledge"
)

// SQLiteConfig configures OpenSQLite.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:" for a private in-memory database.
	Path string

	// BusyTimeout bounds how long a connection waits on a locked database (default: 5s)
	BusyTimeout time.Duration

	// MaxOpenConns limits the pool for file databases (default: 4).
	// In-memory databases always use a single connection.
	MaxOpenConns int
}

// SQLiteBackend stores records in a SQLite `knowledge` table.
//
// Every operation checks a dedicated connection out of the pool for its
// duration and returns it on all exit paths.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at cfg.Path and
// prepares the schema.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLiteBackend, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrInvalidConfig)
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}

	db, err := sql.Open(sqliteDriverName, sqliteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if cfg.Path == sqliteMemoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	b, err := NewSQLiteBackend(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// NewSQLiteBackend wraps an already opened SQLite handle and creates the
// schema if needed. The backend takes ownership of db.
func NewSQLiteBackend(ctx context.Context, db *sql.DB) (*SQLiteBackend, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if _, err := db.ExecContext(ctx, sqliteCreateKnowledge); err != nil {
		return nil, fmt.Errorf("create knowledge table: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteCreateTagIndex); err != nil {
		return nil, fmt.Errorf("create tag index: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func sqliteDSN(cfg SQLiteConfig) string {
	if cfg.Path == sqliteMemoryPath {
		return sqliteMemoryPath
	}
	params := url.Values{}
	params.Set("_busy_timeout", fmt.Sprintf("%d", cfg.BusyTimeout.Milliseconds()))
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "FULL")
	return "file:" + escapeURIPath(cfg.Path) + "?" + params.Encode()
}

// escapeURIPath percent-encodes a filesystem path for a SQLite URI filename,
// so "?" and "#" stay part of the file name.
func escapeURIPath(path string) string {
	return (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath()
}

// Insert implements Backend.
func (b *SQLiteBackend) Insert(ctx context.Context, tag, contents string) (id RecordID, err error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return 0, writeError("insert", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeError("insert", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, sqliteInsert, tag, contents)
	if err != nil {
		return 0, writeError("insert", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, writeError("insert", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, writeError("insert", fmt.Errorf("commit: %w", err))
	}
	return RecordID(lastID), nil
}

// All implements Backend.
func (b *SQLiteBackend) All(ctx context.Context) ([]Record, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, readError("select", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqliteSelectAll)
	if err != nil {
		return nil, readError("select", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Tag, &r.Contents); err != nil {
			return nil, readError("select", fmt.Errorf("scan: %w", err))
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, readError("select", err)
	}
	return records, nil
}

// Count implements Backend.
func (b *SQLiteBackend) Count(ctx context.Context) (int, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return 0, readError("count", err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRowContext(ctx, sqliteCount).Scan(&n); err != nil {
		return 0, readError("count", err)
	}
	return n, nil
}

// Clear implements Backend.
func (b *SQLiteBackend) Clear(ctx context.Context) (removed int64, err error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return 0, writeError("clear", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeError("clear", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, sqliteDeleteAll)
	if err != nil {
		return 0, writeError("clear", err)
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, writeError("clear", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, writeError("clear", fmt.Errorf("commit: %w", err))
	}
	return removed, nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
