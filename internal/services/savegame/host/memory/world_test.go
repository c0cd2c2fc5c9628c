package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

func testWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld()
	w.RegisterTemplate("slime", EnemyTemplate("slime", 3))
	w.RegisterScene("Level1", func(w *World) {
		w.SetPlayer(NewPlayer("hero", 10, snapshot.Vec3{}, host.CombatState{AttackDamage: 1}))
		if _, err := w.SpawnEnemy("slime", "s1", snapshot.Vec3{5, 0, 0}); err != nil {
			t.Errorf("spawn: %v", err)
		}
	})
	w.RegisterScene("Level2", func(w *World) {
		w.SetPlayer(NewWalker("hero", 8, snapshot.Vec3{}))
	})
	return w
}

func TestEnterRunsSetup(t *testing.T) {
	w := testWorld(t)
	if err := w.Enter("Level1"); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if w.ActiveScene() != "Level1" {
		t.Fatalf("active scene = %q", w.ActiveScene())
	}
	if _, ok := w.FindPlayer(); !ok {
		t.Fatal("expected player")
	}
	if len(w.Enemies()) != 1 {
		t.Fatalf("enemies = %d, want 1", len(w.Enemies()))
	}
	if err := w.Enter("Nowhere"); !errors.Is(err, host.ErrSceneNotRegistered) {
		t.Fatalf("expected ErrSceneNotRegistered, got %v", err)
	}
}

func TestLoadCompletesOnStep(t *testing.T) {
	w := testWorld(t)
	if err := w.Enter("Level1"); err != nil {
		t.Fatalf("enter: %v", err)
	}
	load, err := w.LoadSceneAsync(context.Background(), "Level2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	select {
	case <-load.Done():
		t.Fatal("load finished before a frame")
	default:
	}
	if w.ActiveScene() != "Level1" {
		t.Fatalf("scene switched early: %q", w.ActiveScene())
	}
	w.Step()
	<-load.Done()
	if load.Err() != nil {
		t.Fatalf("load err: %v", load.Err())
	}
	if w.ActiveScene() != "Level2" || len(w.Enemies()) != 0 {
		t.Fatalf("unexpected world after load: %q %d", w.ActiveScene(), len(w.Enemies()))
	}
	if w.Loads() != 1 {
		t.Fatalf("loads = %d", w.Loads())
	}
}

func TestLoadUnknownScene(t *testing.T) {
	w := testWorld(t)
	if _, err := w.LoadSceneAsync(context.Background(), "Nowhere"); !errors.Is(err, host.ErrSceneNotRegistered) {
		t.Fatalf("expected ErrSceneNotRegistered, got %v", err)
	}
}

func TestFailNextLoad(t *testing.T) {
	w := testWorld(t)
	if err := w.Enter("Level1"); err != nil {
		t.Fatalf("enter: %v", err)
	}
	boom := errors.New("asset missing")
	w.FailNextLoad("Level2", boom)
	load, err := w.LoadSceneAsync(context.Background(), "Level2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	w.Step()
	<-load.Done()
	if !errors.Is(load.Err(), boom) {
		t.Fatalf("expected failure, got %v", load.Err())
	}
	if w.ActiveScene() != "Level1" {
		t.Fatalf("scene changed on failed load: %q", w.ActiveScene())
	}
}

func TestNextTickFiresOnStep(t *testing.T) {
	w := NewWorld()
	tick := w.NextTick()
	select {
	case <-tick:
		t.Fatal("tick fired without a step")
	default:
	}
	w.Step()
	select {
	case <-tick:
	default:
		t.Fatal("tick did not fire")
	}
	if w.Frame() != 1 {
		t.Fatalf("frame = %d", w.Frame())
	}
}

func TestRunSteps(t *testing.T) {
	w := NewWorld()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, time.Millisecond)
	select {
	case <-w.NextTick():
	case <-time.After(time.Second):
		t.Fatal("run never stepped")
	}
}

func TestSpawnGeneratesID(t *testing.T) {
	w := testWorld(t)
	e, err := w.SpawnEnemy("slime", "", snapshot.Vec3{})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if e.EntityID() == "" {
		t.Fatal("expected generated id")
	}
	if _, err := w.SpawnEnemy("dragon", "d1", snapshot.Vec3{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSetActive(t *testing.T) {
	w := testWorld(t)
	e, err := w.SpawnEnemy("slime", "s9", snapshot.Vec3{})
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	w.SetActive(e, false)
	if e.Active() {
		t.Fatal("expected inactive")
	}
	if _, ok := w.Enemy("s9"); !ok {
		t.Fatal("inactive enemy should still be listed")
	}
}

func TestFieldEntityOnlyAcceptsDeclaredFields(t *testing.T) {
	f := NewFieldEntity("ghost", "g1", map[string]any{"currentHealth": 2})
	if !f.SetField("currentHealth", 1) {
		t.Fatal("expected declared field to be settable")
	}
	if f.SetField("position", snapshot.Vec3{}) {
		t.Fatal("undeclared field should be rejected")
	}
	if v, _ := f.Field("currentHealth"); v != 1 {
		t.Fatalf("currentHealth = %v", v)
	}
}

func TestProgress(t *testing.T) {
	w := NewWorld()
	w.RestoreProgress(snapshot.Progress{Level: 2})
	w.AddPlayTime(1500 * time.Millisecond)
	got := w.Progress()
	if got.Level != 2 || got.PlayTimeSeconds != 1.5 {
		t.Fatalf("progress = %+v", got)
	}
}
