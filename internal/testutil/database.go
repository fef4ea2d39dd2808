package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/edrs/internal/storage"
)

// SetupTestDB creates a migrated in-memory narrative store. It is closed
// automatically when the test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	gen := narrative.NewGenerator(client, store, narrative.DefaultConfig(), logger)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
