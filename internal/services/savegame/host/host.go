// Package host declares the collaborators the save subsystem consumes from the
// running game: the world of live entities, the scene host, the frame
// scheduler and the notification sink.
//
// Entities expose state through small capability interfaces. Adapters in the
// adapter package type-assert for the capabilities they need, so an entity
// only implements what it actually has.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// ErrSceneNotRegistered is returned by LoadSceneAsync for unknown scenes.
var ErrSceneNotRegistered = errors.New("scene not registered")

// Entity is a handle to a live world object.
type Entity interface {
	EntityID() string
}

// Enemy is an enemy entity as enumerated by the world.
type Enemy interface {
	Entity
	Kind() string
	Active() bool
}

// Health is implemented by entities with hit points.
type Health interface {
	Health() (current, max int)
	SetHealth(current, max int)
}

// Mover is implemented by entities with a position and facing.
type Mover interface {
	Position() snapshot.Vec3
	SetPosition(snapshot.Vec3)
	FacingRight() bool
	SetFacingRight(bool)
}

// CombatState is the attack state of a combat-capable entity.
type CombatState struct {
	AttackDamage   int
	AttackCooldown float64
	AttackRadius   float64
	IsDead         bool
	NextAttackTime float64
}

// Combatant is implemented by entities that attack.
type Combatant interface {
	CombatState() CombatState
	SetCombatState(CombatState)
}

// FieldAccessor exposes named fields for entities without a dedicated
// adapter. Field names are the record field names ("currentHealth",
// "position", ...). SetField reports false for unknown or unsettable
// fields.
type FieldAccessor interface {
	Field(name string) (any, bool)
	SetField(name string, value any) bool
}

// World queries and mutates live entities.
type World interface {
	FindPlayer() (Entity, bool)
	Enemies() []Enemy
	// SpawnEnemy instantiates the registered template of kind under id.
	SpawnEnemy(kind, id string, position snapshot.Vec3) (Enemy, error)
	SetActive(e Entity, active bool)
}

// SceneLoad is a pending scene load. Done closes once the host finished
// loading; Err then reports whether the scene became ready.
type SceneLoad interface {
	Done() <-chan struct{}
	Err() error
}

// SceneHost owns scene switching.
type SceneHost interface {
	ActiveScene() string
	LoadSceneAsync(ctx context.Context, name string) (SceneLoad, error)
}

// Scheduler hands out frame boundaries. NextTick closes at the start of the
// next frame.
type Scheduler interface {
	NextTick() <-chan struct{}
}

// Notifier shows transient messages to the player.
type Notifier interface {
	Notify(message string, isError bool)
}

// ProgressTracker exposes run progress. It is optional.
type ProgressTracker interface {
	Progress() snapshot.Progress
	RestoreProgress(snapshot.Progress)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, isError bool)

// Notify calls f.
func (f NotifierFunc) Notify(message string, isError bool) {
	f(message, isError)
}

// TickerScheduler approximates frames with a fixed interval for hosts that
// have no frame loop of their own.
type TickerScheduler struct {
	Interval time.Duration
}

// NextTick closes after one interval.
func (s TickerScheduler) NextTick() <-chan struct{} {
	done := make(chan struct{})
	interval := s.Interval
	if interval <= 0 {
		close(done)
		return done
	}
	time.AfterFunc(interval, func() { close(done) })
	return done
}
