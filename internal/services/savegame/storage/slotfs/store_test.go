package slotfs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func testSnapshot(name string, health int, savedAt time.Time) snapshot.Snapshot {
	return snapshot.Snapshot{
		SaveName:  name,
		SavedAt:   savedAt,
		SceneName: "Level1",
		Player: snapshot.Player{
			CurrentHealth: health,
			MaxHealth:     10,
			Position:      snapshot.Vec3{1, 2, 0},
			FacingRight:   true,
			AttackDamage:  snapshot.IntPtr(2),
		},
		Enemies: []snapshot.Enemy{
			{ID: "e1", Kind: "slime", CurrentHealth: 3, MaxHealth: 3, Position: snapshot.Vec3{4, 0, 0}, IsActive: true},
		},
		Progress: snapshot.Progress{Level: 1, PlayTimeSeconds: 90, Score: 10},
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(" ", nil); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	want := testSnapshot("Slot 1", 7, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

	if err := store.Write(ctx, 0, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, found, err := store.Read(ctx, 0)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "save_0.json")); err != nil {
		t.Fatalf("expected save_0.json: %v", err)
	}
}

func TestReadEmptySlot(t *testing.T) {
	store := openTestStore(t)
	_, found, err := store.Read(context.Background(), 1)
	if err != nil {
		t.Fatalf("read empty slot: %v", err)
	}
	if found {
		t.Fatal("expected empty slot")
	}
}

func TestReadCorruptRecordLeavesBytes(t *testing.T) {
	store := openTestStore(t)
	garbage := []byte("{\"saveName\": \x00\x01 garbage")
	if err := os.WriteFile(store.Path(2), garbage, 0o600); err != nil {
		t.Fatalf("seed garbage: %v", err)
	}

	_, _, err := store.Read(context.Background(), 2)
	if !errors.Is(err, apperrors.Sentinel(apperrors.CodeCorruptRecord)) {
		t.Fatalf("expected corrupt record, got %v", err)
	}
	after, err := os.ReadFile(store.Path(2))
	if err != nil {
		t.Fatalf("corrupt record removed: %v", err)
	}
	if !bytes.Equal(after, garbage) {
		t.Fatal("corrupt record bytes changed")
	}
}

func TestWriteOverwritesPriorRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	first := testSnapshot("first", 7, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	second := testSnapshot("second", 3, time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC))

	if err := store.Write(ctx, 1, first); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := store.Write(ctx, 1, second); err != nil {
		t.Fatalf("write second: %v", err)
	}
	got, _, err := store.Read(ctx, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.SaveName != "second" || got.Player.CurrentHealth != 3 {
		t.Fatalf("expected second record, got %+v", got)
	}
}

func TestFailedWriteKeepsPriorRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	prior := testSnapshot("prior", 7, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	if err := store.Write(ctx, 0, prior); err != nil {
		t.Fatalf("write prior: %v", err)
	}

	store.rename = func(string, string) error { return errors.New("disk full") }
	err := store.Write(ctx, 0, testSnapshot("next", 1, time.Now()))
	if !errors.Is(err, apperrors.Sentinel(apperrors.CodeIOFailure)) {
		t.Fatalf("expected io failure, got %v", err)
	}

	got, found, err := store.Read(ctx, 0)
	if err != nil || !found {
		t.Fatalf("read prior: found=%v err=%v", found, err)
	}
	if got.SaveName != "prior" {
		t.Fatalf("prior record replaced: %+v", got)
	}
	temps, _ := filepath.Glob(filepath.Join(store.Dir(), "*.tmp"))
	if len(temps) != 0 {
		t.Fatalf("expected temp files cleaned, got %v", temps)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete empty slot: %v", err)
	}
	if err := store.Write(ctx, 1, testSnapshot("x", 5, time.Now())); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Read(ctx, 1); found {
		t.Fatal("expected slot empty after delete")
	}
}

func TestInvalidSlotIndex(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	invalid := apperrors.Sentinel(apperrors.CodeInvalidSlotIndex)

	if err := store.Write(ctx, storage.MaxSlots, testSnapshot("x", 1, time.Now())); !errors.Is(err, invalid) {
		t.Fatalf("write: expected invalid index, got %v", err)
	}
	if _, _, err := store.Read(ctx, -1); !errors.Is(err, invalid) {
		t.Fatalf("read: expected invalid index, got %v", err)
	}
	if err := store.Delete(ctx, 99); !errors.Is(err, invalid) {
		t.Fatalf("delete: expected invalid index, got %v", err)
	}
}

func TestListSummaries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	savedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Write(ctx, 1, testSnapshot("Slot 2", 7, savedAt)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(store.Path(2), []byte("nope"), 0o600); err != nil {
		t.Fatalf("seed corrupt: %v", err)
	}

	summaries, err := store.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != storage.MaxSlots {
		t.Fatalf("expected %d summaries, got %d", storage.MaxSlots, len(summaries))
	}
	if summaries[0].Status != storage.SlotEmpty {
		t.Fatalf("expected slot 0 empty, got %s", summaries[0].Status)
	}
	if summaries[1].Status != storage.SlotOccupied {
		t.Fatalf("expected slot 1 occupied, got %s", summaries[1].Status)
	}
	got := summaries[1].Summary
	if got.SaveName != "Slot 2" || got.SceneName != "Level1" || got.PlayerHealth != 7 || got.PlayTimeSeconds != 90 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if !got.SavedAt.Equal(savedAt) {
		t.Fatalf("unexpected savedAt %s", got.SavedAt)
	}
	if summaries[2].Status != storage.SlotCorrupt {
		t.Fatalf("expected slot 2 corrupt, got %s", summaries[2].Status)
	}
}

func TestListSummariesMarksUnloadableRecordCorrupt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	record := `{"version": 2, "saveName": "Slot 3", "savedAt": "2026-05-01T12:00:00Z", "sceneName": "Level1",
		"player": {"currentHealth": 7, "maxHealth": "oops"}, "enemies": 5, "progress": {}}`
	if err := os.WriteFile(store.Path(2), []byte(record), 0o600); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	_, _, err := store.Read(ctx, 2)
	if code := apperrors.CodeOf(err); code != apperrors.CodeCorruptRecord {
		t.Fatalf("expected read code %s, got %s (%v)", apperrors.CodeCorruptRecord, code, err)
	}
	summaries, err := store.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if summaries[2].Status != storage.SlotCorrupt {
		t.Fatalf("expected slot 2 corrupt, got %s", summaries[2].Status)
	}
}

func TestOpenRemovesStaleTemps(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "save_0-123.tmp")
	if err := os.WriteFile(stale, []byte("partial"), 0o600); err != nil {
		t.Fatalf("seed temp: %v", err)
	}
	if _, err := Open(dir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale temp removed, got %v", err)
	}
}
