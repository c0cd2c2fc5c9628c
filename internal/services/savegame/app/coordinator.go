// Package app is the save coordinator: the single entry point gameplay uses
// to save, load, delete and list slots, plus auto-save and quick-save.
package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/platform/errors/i18n"
	"github.com/louisbranch/savepoint/internal/platform/otel"
	"github.com/louisbranch/savepoint/internal/services/savegame/adapter"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
	"github.com/louisbranch/savepoint/internal/services/savegame/transition"
)

// QuickSaveSlotKey is the preference key remembering the quick-save slot.
const QuickSaveSlotKey = "savegame.quick_save_slot"

const (
	autoSaveName  = "Auto Save"
	quickSaveName = "Quick Save"
)

// Deps are the coordinator's collaborators. Store, Preferences, World and
// Scenes are required.
type Deps struct {
	Store       storage.SlotStore
	Preferences storage.Preferences
	World       host.World
	Scenes      host.SceneHost
	Scheduler   host.Scheduler
	Progress    host.ProgressTracker
	Notifier    host.Notifier
	Players     *adapter.PlayerChain
	Enemies     *adapter.EnemyChain
	Logger      *log.Logger
	Tracer      trace.TracerProvider
	Now         func() time.Time
}

// Coordinator serializes saves and loads against one world.
type Coordinator struct {
	cfg        Config
	store      storage.SlotStore
	prefs      storage.Preferences
	world      host.World
	scenes     host.SceneHost
	progress   host.ProgressTracker
	notifier   host.Notifier
	players    *adapter.PlayerChain
	enemies    *adapter.EnemyChain
	controller *transition.Controller
	catalog    *i18n.Catalog
	logger     *log.Logger
	tracer     trace.Tracer
	now        func() time.Time

	// gate admits one save, load or delete at a time.
	gate *semaphore.Weighted

	mu          sync.Mutex
	lastStamp   time.Time
	autoEnabled bool
	autoElapsed time.Duration
}

// New builds a coordinator.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Preferences == nil {
		return nil, fmt.Errorf("preferences store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if deps.Players == nil {
		deps.Players = adapter.NewPlayerChain(logger)
	}
	if deps.Enemies == nil {
		deps.Enemies = adapter.NewEnemyChain(logger)
	}
	controller, err := transition.New(transition.Deps{
		Store:     deps.Store,
		World:     deps.World,
		Scenes:    deps.Scenes,
		Scheduler: deps.Scheduler,
		Progress:  deps.Progress,
		Players:   deps.Players,
		Enemies:   deps.Enemies,
		Logger:    logger,
		Tracer:    deps.Tracer,
	})
	if err != nil {
		return nil, fmt.Errorf("new transition controller: %w", err)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = host.NotifierFunc(func(string, bool) {})
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		cfg:         cfg,
		store:       deps.Store,
		prefs:       deps.Preferences,
		world:       deps.World,
		scenes:      deps.Scenes,
		progress:    deps.Progress,
		notifier:    notifier,
		players:     deps.Players,
		enemies:     deps.Enemies,
		controller:  controller,
		catalog:     i18n.GetCatalog(cfg.Locale),
		logger:      logger,
		tracer:      otel.Tracer(deps.Tracer),
		now:         now,
		gate:        semaphore.NewWeighted(1),
		autoEnabled: cfg.AutoSaveEnabled,
	}, nil
}

// Save captures the world into slot. An empty name becomes "Slot <n>".
func (c *Coordinator) Save(ctx context.Context, slot int, name string) (snapshot.Snapshot, error) {
	if name == "" {
		name = "Slot " + strconv.Itoa(slot+1)
	}
	return c.save(ctx, "savegame.save", slot, name, i18n.KeySaved)
}

// AutoSave saves into the most recently written slot, or slot 0 when none
// is occupied.
func (c *Coordinator) AutoSave(ctx context.Context) (snapshot.Snapshot, error) {
	summaries, err := c.store.ListSummaries(ctx)
	if err != nil {
		c.notifyError(err, 0)
		return snapshot.Snapshot{}, err
	}
	slot, ok := storage.MostRecent(summaries)
	if !ok {
		slot = 0
	}
	return c.save(ctx, "savegame.autosave", slot, autoSaveName, i18n.KeyAutoSaved)
}

// QuickSave saves into the remembered quick-save slot.
func (c *Coordinator) QuickSave(ctx context.Context) (snapshot.Snapshot, error) {
	slot, err := c.QuickSaveSlot(ctx)
	if err != nil {
		c.notifyError(err, 0)
		return snapshot.Snapshot{}, err
	}
	return c.save(ctx, "savegame.quicksave", slot, quickSaveName, i18n.KeyQuickSaved)
}

func (c *Coordinator) save(ctx context.Context, spanName string, slot int, name, okKey string) (snapshot.Snapshot, error) {
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithAttributes(attribute.Int("savegame.slot", slot)))
	defer span.End()

	snap, err := c.saveLocked(ctx, slot, name)
	if err != nil {
		endWithError(span, err)
		c.notifyError(err, slot)
		c.logger.Printf("save slot %d: %v", slot, err)
		return snapshot.Snapshot{}, err
	}
	span.SetAttributes(
		attribute.String("savegame.scene", snap.SceneName),
		attribute.Int("savegame.enemies", len(snap.Enemies)),
	)
	c.notifier.Notify(c.catalog.Format(okKey, slot), false)
	c.logger.Printf("saved %q to slot %d (%s)", snap.SaveName, slot, snap.SceneName)
	return snap, nil
}

func (c *Coordinator) saveLocked(ctx context.Context, slot int, name string) (snapshot.Snapshot, error) {
	if err := storage.ValidateSlot(slot); err != nil {
		return snapshot.Snapshot{}, err
	}
	if !c.gate.TryAcquire(1) {
		return snapshot.Snapshot{}, busy()
	}
	defer c.gate.Release(1)

	snap, err := c.collect(name)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return snapshot.Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidSnapshot, "snapshot failed validation", err)
	}
	previous, err := c.previousStamp(ctx, slot)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap.SavedAt = c.stamp(previous)
	if err := c.store.Write(ctx, slot, snap); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

// collect reads the live world. Collection finishes before anything is
// serialized.
func (c *Coordinator) collect(name string) (snapshot.Snapshot, error) {
	player, found := c.world.FindPlayer()
	if !found {
		player = nil
	}
	playerRecord, err := c.players.Collect(player)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	enemies, err := c.enemies.CollectAll(c.world)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := snapshot.Snapshot{
		SaveName:  name,
		SceneName: c.scenes.ActiveScene(),
		Player:    playerRecord,
		Enemies:   enemies,
	}
	if c.progress != nil {
		snap.Progress = c.progress.Progress()
	}
	return snap, nil
}

// previousStamp returns the savedAt of the record currently in slot.
func (c *Coordinator) previousStamp(ctx context.Context, slot int) (time.Time, error) {
	summaries, err := c.store.ListSummaries(ctx)
	if err != nil {
		return time.Time{}, err
	}
	for _, s := range summaries {
		if s.Index == slot && s.Occupied() {
			return s.Summary.SavedAt, nil
		}
	}
	return time.Time{}, nil
}

// stamp returns a time after both previous and every stamp handed out
// before.
func (c *Coordinator) stamp(previous time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	floor := c.lastStamp
	if previous.After(floor) {
		floor = previous
	}
	now := c.now().UTC()
	if !now.After(floor) {
		now = floor.Add(time.Millisecond)
	}
	c.lastStamp = now
	return now
}

// Load restores slot into the world.
func (c *Coordinator) Load(ctx context.Context, slot int) (transition.Result, error) {
	ctx, span := c.tracer.Start(ctx, "savegame.load", trace.WithAttributes(attribute.Int("savegame.slot", slot)))
	defer span.End()

	result, err := c.loadLocked(ctx, slot)
	if err != nil {
		endWithError(span, err)
		c.notifyError(err, slot)
		c.logger.Printf("load slot %d: %v", slot, err)
		return transition.Result{}, err
	}
	span.SetAttributes(attribute.Bool("savegame.in_place", result.InPlace))
	c.notifier.Notify(c.catalog.Format(i18n.KeyLoaded, slot), false)
	return result, nil
}

func (c *Coordinator) loadLocked(ctx context.Context, slot int) (transition.Result, error) {
	if err := storage.ValidateSlot(slot); err != nil {
		return transition.Result{}, err
	}
	if !c.gate.TryAcquire(1) {
		return transition.Result{}, busy()
	}
	defer c.gate.Release(1)
	return c.controller.Load(ctx, slot)
}

// Delete removes the record in slot. Deleting an empty slot succeeds.
func (c *Coordinator) Delete(ctx context.Context, slot int) error {
	ctx, span := c.tracer.Start(ctx, "savegame.delete", trace.WithAttributes(attribute.Int("savegame.slot", slot)))
	defer span.End()

	err := func() error {
		if err := storage.ValidateSlot(slot); err != nil {
			return err
		}
		if !c.gate.TryAcquire(1) {
			return busy()
		}
		defer c.gate.Release(1)
		return c.store.Delete(ctx, slot)
	}()
	if err != nil {
		endWithError(span, err)
		c.notifyError(err, slot)
		return err
	}
	c.notifier.Notify(c.catalog.Format(i18n.KeyDeleted, slot), false)
	return nil
}

// ListSummaries describes every slot.
func (c *Coordinator) ListSummaries(ctx context.Context) ([]storage.SlotSummary, error) {
	return c.store.ListSummaries(ctx)
}

// SetQuickSaveSlot remembers slot as the quick-save target.
func (c *Coordinator) SetQuickSaveSlot(ctx context.Context, slot int) error {
	if err := storage.ValidateSlot(slot); err != nil {
		c.notifyError(err, slot)
		return err
	}
	if err := c.prefs.SetInt(ctx, QuickSaveSlotKey, slot); err != nil {
		err = apperrors.Wrap(apperrors.CodeIOFailure, "store quick-save slot", err)
		c.notifyError(err, slot)
		return err
	}
	return nil
}

// QuickSaveSlot returns the remembered quick-save slot, 0 when unset. A
// stored value outside the slot range also reads as 0.
func (c *Coordinator) QuickSaveSlot(ctx context.Context) (int, error) {
	slot, err := c.prefs.GetInt(ctx, QuickSaveSlotKey, 0)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeIOFailure, "read quick-save slot", err)
	}
	if storage.ValidateSlot(slot) != nil {
		c.logger.Printf("quick-save slot %d out of range, using 0", slot)
		return 0, nil
	}
	return slot, nil
}

// SetAutoSaveEnabled turns the auto-save timer on or off. Disabling resets
// the elapsed time.
func (c *Coordinator) SetAutoSaveEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoEnabled = enabled
	if !enabled {
		c.autoElapsed = 0
	}
}

// AutoSaveEnabled reports whether the timer runs.
func (c *Coordinator) AutoSaveEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoEnabled
}

// Update advances the auto-save timer by dt and auto-saves when the
// interval elapses. The timer does not run in the menu scene. A busy
// coordinator keeps the timer due so the next update retries.
func (c *Coordinator) Update(ctx context.Context, dt time.Duration) (fired bool, err error) {
	c.mu.Lock()
	if !c.autoEnabled || c.scenes.ActiveScene() == c.cfg.MenuScene {
		c.mu.Unlock()
		return false, nil
	}
	c.autoElapsed += dt
	due := c.autoElapsed >= c.cfg.autoSaveInterval()
	c.mu.Unlock()
	if !due {
		return false, nil
	}

	_, err = c.AutoSave(ctx)
	if apperrors.CodeOf(err) == apperrors.CodeBusy {
		return false, err
	}
	c.mu.Lock()
	c.autoElapsed = 0
	c.mu.Unlock()
	return true, err
}

// State reports the transition controller state.
func (c *Coordinator) State() transition.State {
	return c.controller.State()
}

func (c *Coordinator) notifyError(err error, slot int) {
	code := apperrors.CodeOf(err)
	if code == "" {
		return
	}
	c.notifier.Notify(c.catalog.Format(string(code), slot), true)
}

func busy() error {
	return apperrors.New(apperrors.CodeBusy, "another save or load is in progress")
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
}
