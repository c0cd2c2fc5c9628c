// Package memory is an in-process game host: a world of entities, a scene
// registry whose loads complete on frame steps, and a frame scheduler.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/savepoint/internal/platform/id"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// SceneSetup populates a freshly loaded scene.
type SceneSetup func(w *World)

// Template builds a new enemy of one kind.
type Template func(id string, position snapshot.Vec3) host.Enemy

// EnemyTemplate returns a template for enemies of kind with maxHealth.
func EnemyTemplate(kind string, maxHealth int) Template {
	return func(id string, position snapshot.Vec3) host.Enemy {
		return NewEnemy(kind, id, maxHealth, position)
	}
}

type activator interface {
	SetActive(bool)
}

// World implements host.World, host.SceneHost, host.Scheduler and
// host.ProgressTracker.
type World struct {
	mu        sync.Mutex
	scenes    map[string]SceneSetup
	templates map[string]Template
	failures  map[string]error

	active   string
	player   host.Entity
	enemies  []host.Enemy
	progress snapshot.Progress

	pending []*sceneLoad
	ticks   []chan struct{}
	frame   int64
	loads   int
}

// NewWorld returns an empty world with no active scene.
func NewWorld() *World {
	return &World{
		scenes:    make(map[string]SceneSetup),
		templates: make(map[string]Template),
		failures:  make(map[string]error),
	}
}

// RegisterScene makes name loadable.
func (w *World) RegisterScene(name string, setup SceneSetup) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scenes[name] = setup
}

// RegisterTemplate makes kind spawnable.
func (w *World) RegisterTemplate(kind string, t Template) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.templates[kind] = t
}

// FailNextLoad makes the next load of name finish with err.
func (w *World) FailNextLoad(name string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[name] = err
}

// Enter switches to name immediately, outside the async load path. It is
// used to start a session.
func (w *World) Enter(name string) error {
	w.mu.Lock()
	setup, ok := w.scenes[name]
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("enter %q: %w", name, host.ErrSceneNotRegistered)
	}
	w.swap(name, setup)
	return nil
}

// swap clears the live entities and runs setup for name.
func (w *World) swap(name string, setup SceneSetup) {
	w.mu.Lock()
	w.active = name
	w.player = nil
	w.enemies = nil
	w.mu.Unlock()
	if setup != nil {
		setup(w)
	}
}

// SetPlayer places the player entity.
func (w *World) SetPlayer(e host.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player = e
}

// AddEnemy places an already built enemy.
func (w *World) AddEnemy(e host.Enemy) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enemies = append(w.enemies, e)
}

// Enemy finds a live enemy by id.
func (w *World) Enemy(entityID string) (host.Enemy, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.enemies {
		if e.EntityID() == entityID {
			return e, true
		}
	}
	return nil, false
}

// FindPlayer implements host.World.
func (w *World) FindPlayer() (host.Entity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.player, w.player != nil
}

// Enemies implements host.World. Inactive enemies are included.
func (w *World) Enemies() []host.Enemy {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]host.Enemy, len(w.enemies))
	copy(out, w.enemies)
	return out
}

// SpawnEnemy implements host.World. An empty id gets a generated one.
func (w *World) SpawnEnemy(kind, entityID string, position snapshot.Vec3) (host.Enemy, error) {
	w.mu.Lock()
	t, ok := w.templates[kind]
	w.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("spawn enemy: no template for kind %q", kind)
	}
	if entityID == "" {
		generated, err := id.NewID()
		if err != nil {
			return nil, fmt.Errorf("spawn enemy: %w", err)
		}
		entityID = generated
	}
	e := t(entityID, position)
	w.AddEnemy(e)
	return e, nil
}

// SetActive implements host.World.
func (w *World) SetActive(e host.Entity, active bool) {
	if a, ok := e.(activator); ok {
		a.SetActive(active)
	}
}

// ActiveScene implements host.SceneHost.
func (w *World) ActiveScene() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// LoadSceneAsync implements host.SceneHost. The load completes on the next
// Step.
func (w *World) LoadSceneAsync(_ context.Context, name string) (host.SceneLoad, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loads++
	if _, ok := w.scenes[name]; !ok {
		return nil, fmt.Errorf("load %q: %w", name, host.ErrSceneNotRegistered)
	}
	load := &sceneLoad{name: name, done: make(chan struct{})}
	w.pending = append(w.pending, load)
	return load, nil
}

// Loads counts LoadSceneAsync calls.
func (w *World) Loads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loads
}

// NextTick implements host.Scheduler.
func (w *World) NextTick() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	tick := make(chan struct{})
	w.ticks = append(w.ticks, tick)
	return tick
}

// Frame returns how many frames have been stepped.
func (w *World) Frame() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}

// Step advances one frame: pending loads finish, then waiting ticks fire.
// A tick requested while a load finishes fires on the following frame.
func (w *World) Step() {
	w.mu.Lock()
	w.frame++
	pending := w.pending
	w.pending = nil
	ticks := w.ticks
	w.ticks = nil
	w.mu.Unlock()

	for _, load := range pending {
		w.mu.Lock()
		setup := w.scenes[load.name]
		failure := w.failures[load.name]
		delete(w.failures, load.name)
		w.mu.Unlock()
		if failure != nil {
			load.finish(failure)
			continue
		}
		w.swap(load.name, setup)
		load.finish(nil)
	}
	for _, tick := range ticks {
		close(tick)
	}
}

// Run steps frames every interval until ctx is done.
func (w *World) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Step()
		}
	}
}

// Progress implements host.ProgressTracker.
func (w *World) Progress() snapshot.Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// RestoreProgress implements host.ProgressTracker.
func (w *World) RestoreProgress(p snapshot.Progress) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.progress = p
}

// AddPlayTime accumulates play time.
func (w *World) AddPlayTime(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.progress.PlayTimeSeconds += d.Seconds()
}

type sceneLoad struct {
	name string
	done chan struct{}
	err  error
}

func (l *sceneLoad) Done() <-chan struct{} { return l.done }

// Err is valid once Done is closed.
func (l *sceneLoad) Err() error { return l.err }

func (l *sceneLoad) finish(err error) {
	l.err = err
	close(l.done)
}

var (
	_ host.World           = (*World)(nil)
	_ host.SceneHost       = (*World)(nil)
	_ host.Scheduler       = (*World)(nil)
	_ host.ProgressTracker = (*World)(nil)
)
