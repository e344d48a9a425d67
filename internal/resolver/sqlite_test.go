package resolver

import (
	"context"
	"path/filepath"
	"testing"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := newSQLiteStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "tasks", "отчет"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "tasks", "отчет", idAlpha); err != nil {
		t.Fatalf("set: %v", err)
	}
	id, ok, err := store.Get(ctx, "tasks", "отчет")
	if err != nil || !ok || id != idAlpha {
		t.Fatalf("expected hit %s, got %q (ok=%v, err=%v)", idAlpha, id, ok, err)
	}

	// Same utterance in a different namespace stays independent.
	if _, ok, _ := store.Get(ctx, "worktypes", "отчет"); ok {
		t.Fatal("expected namespace isolation")
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	t.Parallel()
	store := newSQLiteStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tasks", "отчет", idAlpha); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "tasks", "отчет", idBeta); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	id, ok, err := store.Get(ctx, "tasks", "отчет")
	if err != nil || !ok || id != idBeta {
		t.Fatalf("expected overwritten value %s, got %q (ok=%v, err=%v)", idBeta, id, ok, err)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	t.Parallel()
	store := newSQLiteStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "tasks", "отчет", idAlpha); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, "tasks", "отчет"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "tasks", "отчет"); ok {
		t.Fatal("expected entry gone after delete")
	}
	// Deleting a missing entry is a no-op, not an error.
	if err := store.Delete(ctx, "tasks", "отчет"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}
