// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database"
)

// New returns an in-memory database with the schemas of the given services
// applied. It is closed when the test ends.
func New(t testing.TB, services ...config.Service) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, service := range services {
		if err := database.Migrate(ctx, db, service, nil); err != nil {
			t.Fatalf("migrate %s: %v", service, err)
		}
	}

	return db
}
