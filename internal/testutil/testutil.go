// Package testutil provides shared test fixtures.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"golf-tracker/internal/config"
	"golf-tracker/internal/database"

	"github.com/rs/zerolog"
)

// NewDB opens a fresh migrated SQLite database in a per-test temp dir.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "golf.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
