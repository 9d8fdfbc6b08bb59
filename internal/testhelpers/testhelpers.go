package testhelpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
)

// NewTestDB returns a migrated in-memory SQLite database configured the same
// way as production. It is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
