package testsupport

import (
	"context"
	"testing"
	"time"

	"clipdeck/internal/config"
	"clipdeck/internal/library"
)

// MustOpenLibrary opens a library.Store for tests and registers cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddEntry inserts a library entry created at the given time.
func AddEntry(t testing.TB, store *library.Store, category library.Category, output string, created time.Time) *library.Entry {
	t.Helper()

	kind := "screen"
	if category == library.CategoryExport {
		kind = "trim"
	}
	entry := &library.Entry{
		Category:   category,
		Kind:       kind,
		OutputPath: output,
		StartedAt:  created,
		CreatedAt:  created,
	}
	if err := store.Add(context.Background(), entry); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return entry
}
