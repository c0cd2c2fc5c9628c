package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "preferences.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestGetIntFallback(t *testing.T) {
	store := openTestStore(t)
	got, err := store.GetInt(context.Background(), "savegame.quick_save_slot", 2)
	if err != nil {
		t.Fatalf("get int: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected fallback 2, got %d", got)
	}
}

func TestSetIntUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, value := range []int{1, 0} {
		if err := store.SetInt(ctx, "savegame.quick_save_slot", value); err != nil {
			t.Fatalf("set int: %v", err)
		}
		got, err := store.GetInt(ctx, "savegame.quick_save_slot", 2)
		if err != nil {
			t.Fatalf("get int: %v", err)
		}
		if got != value {
			t.Fatalf("expected %d, got %d", value, got)
		}
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.SetInt(ctx, "k", 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, err := second.GetInt(ctx, "k", 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7 after reopen, got %d", got)
	}
}

func TestRejectsEmptyKey(t *testing.T) {
	store := openTestStore(t)
	if err := store.SetInt(context.Background(), " ", 1); err == nil {
		t.Fatal("expected empty key error")
	}
	if _, err := store.GetInt(context.Background(), "", 1); err == nil {
		t.Fatal("expected empty key error")
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.GetInt(context.Background(), "k", 0); err == nil {
		t.Fatal("expected not configured error")
	}
}
