package scenario

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/savepoint/internal/services/savegame/app"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	dir := t.TempDir()
	cfg, err := app.LoadConfigFrom(map[string]string{
		"SAVEPOINT_SAVE_DIR":   dir,
		"SAVEPOINT_PREFS_PATH": filepath.Join(dir, "preferences.db"),
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return &Runner{Config: cfg, Logger: log.New(io.Discard, "", 0), FrameStep: time.Millisecond}
}

func TestScenarioScripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenario scripts found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadFile(path)
			if err != nil {
				t.Fatalf("load %s: %v", path, err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			report, err := testRunner(t).Run(ctx, s)
			if err != nil {
				t.Fatalf("%s: %v", s.Name, err)
			}
			if report.Steps != len(s.Steps) {
				t.Fatalf("ran %d of %d steps", report.Steps, len(s.Steps))
			}
		})
	}
}

func TestLoadStringRecordsSteps(t *testing.T) {
	s, err := LoadString(`
local s = Scenario.new("probe")
s:scene("Level1")
s:enemy("slime", "s1", {position = {1, 2.5, 0}})
s:save(0, "first")
s:advance(1.5)
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "probe" || len(s.Steps) != 4 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	enemy := s.Steps[1]
	if enemy.Kind != "enemy" || enemy.Args["id"] != "s1" || enemy.Args["kind"] != "slime" {
		t.Fatalf("enemy step = %+v", enemy)
	}
	pos, ok := enemy.Args["position"].([]any)
	if !ok || len(pos) != 3 || pos[1] != 2.5 || pos[0] != 1 {
		t.Fatalf("position = %#v", enemy.Args["position"])
	}
	if s.Steps[2].Args["slot"] != 0 || s.Steps[2].Args["name"] != "first" {
		t.Fatalf("save step = %+v", s.Steps[2])
	}
	if s.Steps[3].Args["seconds"] != 1.5 {
		t.Fatalf("advance step = %+v", s.Steps[3])
	}
}

func TestScriptMustReturnScenario(t *testing.T) {
	if _, err := LoadString(`return 42`); err == nil {
		t.Fatal("expected error for non-scenario return")
	}
	if _, err := LoadString(`this is not lua`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestFailedExpectationNamesStep(t *testing.T) {
	s, err := LoadString(`
local s = Scenario.new("wrong scene")
s:scene("Level1")
s:player({health = 3})
s:change_scene("Level1")
s:expect_scene("Level2")
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = testRunner(t).Run(context.Background(), s)
	if err == nil || !strings.Contains(err.Error(), "step 4 (expect_scene)") {
		t.Fatalf("expected failure at step 4, got %v", err)
	}
}

func TestUnexpectedErrorFails(t *testing.T) {
	s, err := LoadString(`
local s = Scenario.new("empty load")
s:scene("Level1")
s:player({health = 3})
s:change_scene("Level1")
s:load(0)
s:expect_error()
return s
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := testRunner(t).Run(context.Background(), s); err == nil {
		t.Fatal("expected failure for unexpected SLOT_EMPTY")
	}
}
