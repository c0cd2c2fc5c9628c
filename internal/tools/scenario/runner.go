package scenario

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/platform/timeouts"
	"github.com/louisbranch/savepoint/internal/services/savegame/app"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/host/memory"
	"github.com/louisbranch/savepoint/internal/services/savegame/notify"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
)

const playerID = "player"

// Report summarizes a finished scenario.
type Report struct {
	Name          string
	Steps         int
	Notifications []string
}

// Runner executes scenarios. Each run gets its own world and coordinator
// over the stores named by Config.
type Runner struct {
	Config app.Config
	Logger *log.Logger
	Tracer trace.TracerProvider
	// FrameStep is the simulated frame length. Zero uses timeouts.FrameStep.
	FrameStep time.Duration
}

type sceneSpec struct {
	player  map[string]any
	enemies []map[string]any
}

type run struct {
	world     *memory.World
	coord     *app.Coordinator
	center    *notify.Center
	stores    *app.Stores
	logger    *log.Logger
	lastScene *sceneSpec
	lastErr   error
}

// Run executes every step of s in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, s *Scenario) (Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	stores, err := app.OpenStores(ctx, r.Config, logger)
	if err != nil {
		return Report{}, err
	}
	defer stores.Close()

	world := memory.NewWorld()
	center := notify.NewCenter(logger)
	coord, err := app.New(r.Config, app.Deps{
		Store:       stores.Slots,
		Preferences: stores.Preferences,
		World:       world,
		Scenes:      world,
		Scheduler:   world,
		Progress:    world,
		Notifier:    center,
		Logger:      logger,
		Tracer:      r.Tracer,
	})
	if err != nil {
		return Report{}, fmt.Errorf("new coordinator: %w", err)
	}

	frame := r.FrameStep
	if frame <= 0 {
		frame = timeouts.FrameStep
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go world.Run(runCtx, frame)

	state := &run{
		world:  world,
		coord:  coord,
		center: center,
		stores: stores,
		logger: logger,
	}
	report := Report{Name: s.Name}
	for i, step := range s.Steps {
		if err := state.exec(runCtx, step); err != nil {
			return report, fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
		report.Steps++
	}
	for _, toast := range center.History() {
		report.Notifications = append(report.Notifications, toast.Message)
	}
	return report, nil
}

func (r *run) exec(ctx context.Context, step Step) error {
	args := step.Args
	switch step.Kind {
	case "template":
		r.world.RegisterTemplate(stringArg(args, "kind"), memory.EnemyTemplate(stringArg(args, "kind"), intArg(args, "health", 1)))
		return nil
	case "scene":
		return r.declareScene(stringArg(args, "name"))
	case "player":
		if r.lastScene == nil {
			return fmt.Errorf("player declared before any scene")
		}
		r.lastScene.player = args
		return nil
	case "enemy":
		if r.lastScene == nil {
			return fmt.Errorf("enemy declared before any scene")
		}
		r.lastScene.enemies = append(r.lastScene.enemies, args)
		return nil
	case "change_scene":
		return r.world.Enter(stringArg(args, "name"))
	case "save":
		_, r.lastErr = r.coord.Save(ctx, intArg(args, "slot", 0), stringArg(args, "name"))
		return nil
	case "load":
		_, r.lastErr = r.coord.Load(ctx, intArg(args, "slot", 0))
		return nil
	case "delete":
		r.lastErr = r.coord.Delete(ctx, intArg(args, "slot", 0))
		return nil
	case "auto_save":
		_, r.lastErr = r.coord.AutoSave(ctx)
		return nil
	case "quick_save":
		_, r.lastErr = r.coord.QuickSave(ctx)
		return nil
	case "quick_slot":
		r.lastErr = r.coord.SetQuickSaveSlot(ctx, intArg(args, "slot", 0))
		return nil
	case "autosave_enabled":
		r.coord.SetAutoSaveEnabled(boolArg(args, "enabled"))
		return nil
	case "advance":
		return r.advance(ctx, floatArg(args, "seconds"))
	case "damage_player":
		return r.damagePlayer(intArg(args, "amount", 0))
	case "move_player":
		return r.movePlayer(args["position"])
	case "kill_enemy":
		return r.killEnemy(stringArg(args, "name"))
	case "corrupt_slot":
		return os.WriteFile(r.stores.Slots.Path(intArg(args, "slot", 0)), []byte("{corrupt"), 0o600)
	case "expect_player":
		return r.expectPlayer(args)
	case "expect_enemy":
		return r.expectEnemy(args)
	case "expect_slot":
		return r.expectSlot(ctx, args)
	case "expect_error":
		return r.expectError(stringArg(args, "code"))
	case "expect_scene":
		if got, want := r.world.ActiveScene(), stringArg(args, "name"); got != want {
			return fmt.Errorf("active scene = %q, want %q", got, want)
		}
		return nil
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *run) declareScene(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("scene name is required")
	}
	spec := &sceneSpec{}
	r.lastScene = spec
	r.world.RegisterScene(name, func(w *memory.World) {
		if spec.player != nil {
			w.SetPlayer(buildPlayer(spec.player))
		}
		for _, enemy := range spec.enemies {
			e, err := w.SpawnEnemy(stringArg(enemy, "kind"), stringArg(enemy, "id"), vecArg(enemy["position"]))
			if err != nil {
				r.logger.Printf("scene %s: %v", name, err)
				continue
			}
			if health, ok := enemy["health"]; ok {
				if h, ok := e.(host.Health); ok {
					_, max := h.Health()
					h.SetHealth(toInt(health), max)
				}
			}
		}
	})
	return nil
}

func buildPlayer(args map[string]any) host.Entity {
	health := intArg(args, "health", 10)
	position := vecArg(args["position"])
	switch stringArg(args, "kind") {
	case "walker":
		return memory.NewWalker(playerID, health, position)
	case "fields":
		return memory.NewFieldEntity("", playerID, map[string]any{
			"currentHealth": health,
			"maxHealth":     health,
			"position":      position,
		})
	default:
		return memory.NewPlayer(playerID, health, position, host.CombatState{
			AttackDamage:   intArg(args, "attack_damage", 1),
			AttackCooldown: floatArg(args, "attack_cooldown"),
			AttackRadius:   floatArg(args, "attack_radius"),
		})
	}
}

// advance moves simulated time forward in frame-sized steps so the
// auto-save timer sees the same increments a game loop would.
func (r *run) advance(ctx context.Context, seconds float64) error {
	remaining := time.Duration(seconds * float64(time.Second))
	const step = time.Second
	for remaining > 0 {
		dt := step
		if remaining < dt {
			dt = remaining
		}
		remaining -= dt
		r.world.AddPlayTime(dt)
		r.center.Advance(dt)
		if _, err := r.coord.Update(ctx, dt); err != nil {
			r.lastErr = err
		}
	}
	return nil
}

func (r *run) player() (host.Entity, error) {
	p, ok := r.world.FindPlayer()
	if !ok {
		return nil, fmt.Errorf("no player in scene %q", r.world.ActiveScene())
	}
	return p, nil
}

func (r *run) damagePlayer(amount int) error {
	p, err := r.player()
	if err != nil {
		return err
	}
	switch e := p.(type) {
	case host.Health:
		current, max := e.Health()
		e.SetHealth(max0(current-amount), max)
	case host.FieldAccessor:
		current, _ := e.Field("currentHealth")
		e.SetField("currentHealth", max0(toInt(current)-amount))
	default:
		return fmt.Errorf("player has no health")
	}
	return nil
}

func (r *run) movePlayer(position any) error {
	p, err := r.player()
	if err != nil {
		return err
	}
	switch e := p.(type) {
	case host.Mover:
		e.SetPosition(vecArg(position))
	case host.FieldAccessor:
		e.SetField("position", vecArg(position))
	default:
		return fmt.Errorf("player cannot move")
	}
	return nil
}

func (r *run) killEnemy(entityID string) error {
	e, ok := r.world.Enemy(entityID)
	if !ok {
		return fmt.Errorf("enemy %q not found", entityID)
	}
	if h, ok := e.(host.Health); ok {
		_, max := h.Health()
		h.SetHealth(0, max)
	}
	r.world.SetActive(e, false)
	return nil
}

func (r *run) expectPlayer(want map[string]any) error {
	p, err := r.player()
	if err != nil {
		return err
	}
	var current, max int
	var position snapshot.Vec3
	switch e := p.(type) {
	case host.Health:
		current, max = e.Health()
		if m, ok := p.(host.Mover); ok {
			position = m.Position()
		}
	case host.FieldAccessor:
		c, _ := e.Field("currentHealth")
		m, _ := e.Field("maxHealth")
		pos, _ := e.Field("position")
		current, max, position = toInt(c), toInt(m), vecArg(pos)
	}
	if v, ok := want["health"]; ok && toInt(v) != current {
		return fmt.Errorf("player health = %d, want %d", current, toInt(v))
	}
	if v, ok := want["max_health"]; ok && toInt(v) != max {
		return fmt.Errorf("player max health = %d, want %d", max, toInt(v))
	}
	if v, ok := want["position"]; ok && vecArg(v) != position {
		return fmt.Errorf("player position = %v, want %v", position, vecArg(v))
	}
	if v, ok := want["attack_damage"]; ok {
		c, isCombatant := p.(host.Combatant)
		if !isCombatant || c.CombatState().AttackDamage != toInt(v) {
			return fmt.Errorf("player attack damage mismatch, want %d", toInt(v))
		}
	}
	return nil
}

func (r *run) expectEnemy(want map[string]any) error {
	entityID := stringArg(want, "id")
	e, ok := r.world.Enemy(entityID)
	if v, exists := want["exists"]; exists {
		if b, _ := v.(bool); b != ok {
			return fmt.Errorf("enemy %q exists = %v, want %v", entityID, ok, b)
		}
		if !ok {
			return nil
		}
	}
	if !ok {
		return fmt.Errorf("enemy %q not found", entityID)
	}
	if v, ok := want["active"]; ok {
		if b, _ := v.(bool); b != e.Active() {
			return fmt.Errorf("enemy %q active = %v, want %v", entityID, e.Active(), b)
		}
	}
	if h, isHealth := e.(host.Health); isHealth {
		current, _ := h.Health()
		if v, ok := want["health"]; ok && toInt(v) != current {
			return fmt.Errorf("enemy %q health = %d, want %d", entityID, current, toInt(v))
		}
	}
	if m, isMover := e.(host.Mover); isMover {
		if v, ok := want["position"]; ok && vecArg(v) != m.Position() {
			return fmt.Errorf("enemy %q position = %v, want %v", entityID, m.Position(), vecArg(v))
		}
	}
	return nil
}

func (r *run) expectSlot(ctx context.Context, want map[string]any) error {
	slot := intArg(want, "slot", 0)
	summaries, err := r.coord.ListSummaries(ctx)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= len(summaries) {
		return fmt.Errorf("slot %d out of range", slot)
	}
	got := summaries[slot]
	if v, ok := want["status"]; ok && storage.SlotStatus(fmt.Sprint(v)) != got.Status {
		return fmt.Errorf("slot %d status = %s, want %v", slot, got.Status, v)
	}
	if v, ok := want["name"]; ok && fmt.Sprint(v) != got.Summary.SaveName {
		return fmt.Errorf("slot %d name = %q, want %q", slot, got.Summary.SaveName, v)
	}
	if v, ok := want["scene"]; ok && fmt.Sprint(v) != got.Summary.SceneName {
		return fmt.Errorf("slot %d scene = %q, want %q", slot, got.Summary.SceneName, v)
	}
	if v, ok := want["health"]; ok && toInt(v) != got.Summary.PlayerHealth {
		return fmt.Errorf("slot %d player health = %d, want %d", slot, got.Summary.PlayerHealth, toInt(v))
	}
	return nil
}

// expectError checks the outcome of the last operation. An empty code
// expects success. The outcome is consumed.
func (r *run) expectError(code string) error {
	err := r.lastErr
	r.lastErr = nil
	if code == "" {
		if err != nil {
			return fmt.Errorf("expected success, got %v", err)
		}
		return nil
	}
	if got := apperrors.CodeOf(err); got != apperrors.Code(code) {
		return fmt.Errorf("error code = %q, want %q (%v)", got, code, err)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func intArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	return toInt(v)
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(math.Round(n))
	}
	return 0
}

func vecArg(v any) snapshot.Vec3 {
	switch vec := v.(type) {
	case snapshot.Vec3:
		return vec
	case []any:
		var out snapshot.Vec3
		for i := 0; i < len(vec) && i < 3; i++ {
			switch n := vec[i].(type) {
			case int:
				out[i] = float64(n)
			case float64:
				out[i] = n
			}
		}
		return out
	}
	return snapshot.Vec3{}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
