package slots

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage/slotfs"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("slots", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Dir != "saves" || cfg.Delete != -1 || cfg.Schema {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestRunListsAndDeletes(t *testing.T) {
	dir := t.TempDir()
	store, err := slotfs.Open(dir, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	snap := snapshot.Snapshot{
		SaveName:  "Checkpoint",
		SavedAt:   time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		SceneName: "Level1",
		Player:    snapshot.Player{CurrentHealth: 7, MaxHealth: 10},
		Progress:  snapshot.Progress{PlayTimeSeconds: 90},
	}
	if err := store.Write(context.Background(), 1, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, Delete: -1}, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	listing := out.String()
	for _, want := range []string{"Checkpoint", "Level1", "1m30s", "2026-05-01T08:00:00Z", "empty"} {
		if !strings.Contains(listing, want) {
			t.Fatalf("listing missing %q:\n%s", want, listing)
		}
	}

	out.Reset()
	if err := Run(context.Background(), Config{Dir: dir, Delete: 1}, &out, nil); err != nil {
		t.Fatalf("run delete: %v", err)
	}
	if strings.Contains(out.String(), "Checkpoint") {
		t.Fatalf("slot 1 still listed:\n%s", out.String())
	}
}

func TestRunRejectsInvalidDelete(t *testing.T) {
	err := Run(context.Background(), Config{Dir: t.TempDir(), Delete: 3}, nil, nil)
	if apperrors.CodeOf(err) != apperrors.CodeInvalidSlotIndex {
		t.Fatalf("expected INVALID_SLOT_INDEX, got %v", err)
	}
}

func TestRunPrintsSchema(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Schema: true}, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(out.Bytes(), &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if schema["title"] != "Save Slot Record" {
		t.Fatalf("title = %v", schema["title"])
	}
}
