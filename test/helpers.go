package test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/vetevidence/vetagent/internal/storage/sqlite"
)

// NewTestDB opens a migrated database in a per-test temp directory.
// The connection is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "vetagent_test.db")
	db, err := sqlite.NewDB(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
