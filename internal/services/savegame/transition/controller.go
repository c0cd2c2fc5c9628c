// Package transition restores a save point into the running game, switching
// scenes first when the record belongs to a different one.
package transition

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

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/platform/otel"
	"github.com/louisbranch/savepoint/internal/platform/timeouts"
	"github.com/louisbranch/savepoint/internal/services/savegame/adapter"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
)

// State is the controller's position in a load.
type State int

const (
	Idle State = iota
	ReadingSlot
	ApplyingInPlace
	AwaitingSceneReady
	Applying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ReadingSlot:
		return "reading_slot"
	case ApplyingInPlace:
		return "applying_in_place"
	case AwaitingSceneReady:
		return "awaiting_scene_ready"
	case Applying:
		return "applying"
	default:
		return "unknown"
	}
}

// Deps are the collaborators of a Controller. Store, World and Scenes are
// required.
type Deps struct {
	Store  storage.SlotStore
	World  host.World
	Scenes host.SceneHost
	// Scheduler supplies the settle frame; without one the controller
	// waits SettleTick.
	Scheduler  host.Scheduler
	SettleTick time.Duration
	Progress   host.ProgressTracker
	Players    *adapter.PlayerChain
	Enemies    *adapter.EnemyChain
	Logger     *log.Logger
	Tracer     trace.TracerProvider
}

// Result describes a completed load.
type Result struct {
	Snapshot snapshot.Snapshot
	InPlace  bool
	Player   adapter.ApplyResult
	Enemies  adapter.ReconcileReport
}

// Controller runs one load at a time.
type Controller struct {
	store     storage.SlotStore
	world     host.World
	scenes    host.SceneHost
	scheduler host.Scheduler
	progress  host.ProgressTracker
	players   *adapter.PlayerChain
	enemies   *adapter.EnemyChain
	logger    *log.Logger
	tracer    trace.Tracer

	mu    sync.Mutex
	state State
}

// New builds a controller.
func New(deps Deps) (*Controller, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("slot store is required")
	}
	if deps.World == nil {
		return nil, fmt.Errorf("world is required")
	}
	if deps.Scenes == nil {
		return nil, fmt.Errorf("scene host is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	scheduler := deps.Scheduler
	if scheduler == nil {
		settle := deps.SettleTick
		if settle <= 0 {
			settle = timeouts.SettleTick
		}
		scheduler = host.TickerScheduler{Interval: settle}
	}
	players := deps.Players
	if players == nil {
		players = adapter.NewPlayerChain(logger)
	}
	enemies := deps.Enemies
	if enemies == nil {
		enemies = adapter.NewEnemyChain(logger)
	}
	return &Controller{
		store:     deps.Store,
		world:     deps.World,
		scenes:    deps.Scenes,
		scheduler: scheduler,
		progress:  deps.Progress,
		players:   players,
		enemies:   enemies,
		logger:    logger,
		tracer:    otel.Tracer(deps.Tracer),
	}, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return apperrors.WithMetadata(apperrors.CodeBusy, "a load is already in progress",
			map[string]string{"State": c.state.String()})
	}
	c.state = ReadingSlot
	return nil
}

// Load restores slot into the world. When the record's scene is already
// active it is applied in place; otherwise exactly one scene load is
// requested and the record is applied one frame after the scene is ready.
// On any error nothing has been applied and the controller is Idle again.
func (c *Controller) Load(ctx context.Context, slot int) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "savegame.transition.load",
		trace.WithAttributes(attribute.Int("savegame.slot", slot)))
	defer span.End()

	result, err := c.load(ctx, slot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("savegame.scene", result.Snapshot.SceneName),
		attribute.Bool("savegame.in_place", result.InPlace),
	)
	return result, nil
}

func (c *Controller) load(ctx context.Context, slot int) (Result, error) {
	if err := c.begin(); err != nil {
		return Result{}, err
	}
	defer c.setState(Idle)

	snap, ok, err := c.store.Read(ctx, slot)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, apperrors.WithMetadata(apperrors.CodeSlotEmpty,
			fmt.Sprintf("slot %d is empty", slot), map[string]string{"Slot": strconv.Itoa(slot)})
	}

	if snap.SceneName == c.scenes.ActiveScene() {
		c.setState(ApplyingInPlace)
		res, err := c.apply(snap)
		res.InPlace = true
		return res, err
	}

	c.setState(AwaitingSceneReady)
	if err := c.awaitScene(ctx, snap.SceneName); err != nil {
		return Result{}, err
	}
	c.setState(Applying)
	return c.apply(snap)
}

func (c *Controller) awaitScene(ctx context.Context, name string) error {
	unavailable := func(cause error) error {
		return apperrors.WrapWithMetadata(apperrors.CodeSceneUnavailable,
			fmt.Sprintf("scene %q is unavailable", name), map[string]string{"Scene": name}, cause)
	}
	pending, err := c.scenes.LoadSceneAsync(ctx, name)
	if err != nil {
		return unavailable(err)
	}
	select {
	case <-pending.Done():
	case <-ctx.Done():
		return fmt.Errorf("await scene %q: %w", name, ctx.Err())
	}
	if err := pending.Err(); err != nil {
		return unavailable(err)
	}
	select {
	case <-c.scheduler.NextTick():
	case <-ctx.Done():
		return fmt.Errorf("settle scene %q: %w", name, ctx.Err())
	}
	return nil
}

// apply writes snap onto the world. The player is checked before anything
// is mutated.
func (c *Controller) apply(snap snapshot.Snapshot) (Result, error) {
	player, found := c.world.FindPlayer()
	if !found {
		player = nil
	}
	if err := c.players.Check(player); err != nil {
		return Result{}, err
	}
	playerResult, err := c.players.Apply(snap.Player, player)
	if err != nil {
		return Result{}, err
	}
	report := c.enemies.Reconcile(c.world, snap.Enemies)
	if c.progress != nil {
		c.progress.RestoreProgress(snap.Progress)
	}
	c.logger.Printf("restored %q in %s: %d enemy changes, %d spawn failures",
		snap.SaveName, snap.SceneName, report.Changes(), len(report.SpawnFailed))
	return Result{Snapshot: snap, Player: playerResult, Enemies: report}, nil
}
