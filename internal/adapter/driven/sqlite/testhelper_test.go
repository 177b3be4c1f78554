package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

// testKey is a fixed 32-byte AES-256 key for repository tests.
var testKey = []byte("0123456789abcdef0123456789abcdef")

// setupTestDB creates a named shared in-memory SQLite database for testing.
// A unique name derived from t.Name() isolates parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it is a safe URI filename component.
	safeName := url.PathEscape(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", safeName)

	db, err := open(context.Background(), dsn, safeName)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
