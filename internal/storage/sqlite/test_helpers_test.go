package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestStore creates a SQLiteStorage for one test and closes it on cleanup.
//
// By default each test gets its own file under t.TempDir(). File-backed
// databases behave like production (WAL, several pooled connections), which
// a private in-memory database cannot. Pass MemoryPath to override.
func newTestStore(t *testing.T, dbPath string) *SQLiteStorage {
	t.Helper()

	if dbPath == "" {
		dbPath = filepath.Join(t.TempDir(), "test.db")
	}

	store, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}
