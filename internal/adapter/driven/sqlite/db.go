// Package sqlite persists the client session in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle. The client is a single short-lived process, so
// one connection serves reads and writes; WAL mode and a busy timeout keep a
// second concurrently running invocation from failing outright.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if necessary) the database at dbPath with WAL mode,
// busy timeout and synchronous NORMAL.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		dbPath,
	)
	return open(ctx, dsn, dbPath)
}

func open(ctx context.Context, dsn, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Conn exposes the underlying handle for migrations.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database.
func (db *DB) Close() error {
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("close %s: %w", db.path, err)
	}
	return nil
}

// parseTime parses the CURRENT_TIMESTAMP format SQLite stores.
func parseTime(v string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}
