package memory

import (
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// body carries the health and movement state shared by players and enemies.
type body struct {
	id          string
	current     int
	max         int
	position    snapshot.Vec3
	facingRight bool
}

func (b *body) EntityID() string { return b.id }

func (b *body) Health() (int, int) { return b.current, b.max }

func (b *body) SetHealth(current, max int) {
	b.current, b.max = current, max
}

func (b *body) Position() snapshot.Vec3 { return b.position }

func (b *body) SetPosition(p snapshot.Vec3) { b.position = p }

func (b *body) FacingRight() bool { return b.facingRight }

func (b *body) SetFacingRight(right bool) { b.facingRight = right }

// Damage lowers current health, never below zero.
func (b *body) Damage(amount int) {
	b.current -= amount
	if b.current < 0 {
		b.current = 0
	}
}

// Walker is a player with health and movement but no attack state.
type Walker struct {
	body
}

// NewWalker creates a walker at full health.
func NewWalker(id string, maxHealth int, position snapshot.Vec3) *Walker {
	return &Walker{body: body{id: id, current: maxHealth, max: maxHealth, position: position, facingRight: true}}
}

// Player is a combat-capable player.
type Player struct {
	body
	combat host.CombatState
}

// NewPlayer creates a player at full health.
func NewPlayer(id string, maxHealth int, position snapshot.Vec3, combat host.CombatState) *Player {
	return &Player{
		body:   body{id: id, current: maxHealth, max: maxHealth, position: position, facingRight: true},
		combat: combat,
	}
}

// CombatState implements host.Combatant.
func (p *Player) CombatState() host.CombatState { return p.combat }

// SetCombatState implements host.Combatant.
func (p *Player) SetCombatState(s host.CombatState) { p.combat = s }

// Enemy is a live enemy with health and movement.
type Enemy struct {
	body
	kind   string
	active bool
}

// NewEnemy creates an active enemy at full health.
func NewEnemy(kind, id string, maxHealth int, position snapshot.Vec3) *Enemy {
	return &Enemy{
		body:   body{id: id, current: maxHealth, max: maxHealth, position: position},
		kind:   kind,
		active: true,
	}
}

// Kind implements host.Enemy.
func (e *Enemy) Kind() string { return e.kind }

// Active implements host.Enemy.
func (e *Enemy) Active() bool { return e.active }

// SetActive toggles whether the enemy participates in the scene.
func (e *Enemy) SetActive(active bool) { e.active = active }

// FieldEntity exposes only named fields. Fields given at construction are
// the only ones it accepts.
type FieldEntity struct {
	id     string
	kind   string
	active bool
	fields map[string]any
}

// NewFieldEntity creates an entity with the given declared fields.
func NewFieldEntity(kind, id string, fields map[string]any) *FieldEntity {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &FieldEntity{id: id, kind: kind, active: true, fields: copied}
}

// EntityID implements host.Entity.
func (f *FieldEntity) EntityID() string { return f.id }

// Kind implements host.Enemy.
func (f *FieldEntity) Kind() string { return f.kind }

// Active implements host.Enemy.
func (f *FieldEntity) Active() bool { return f.active }

// SetActive toggles whether the entity participates in the scene.
func (f *FieldEntity) SetActive(active bool) { f.active = active }

// Field implements host.FieldAccessor.
func (f *FieldEntity) Field(name string) (any, bool) {
	v, ok := f.fields[name]
	return v, ok
}

// SetField implements host.FieldAccessor.
func (f *FieldEntity) SetField(name string, value any) bool {
	if _, ok := f.fields[name]; !ok {
		return false
	}
	f.fields[name] = value
	return true
}

var (
	_ host.Health        = (*Walker)(nil)
	_ host.Mover         = (*Walker)(nil)
	_ host.Combatant     = (*Player)(nil)
	_ host.Enemy         = (*Enemy)(nil)
	_ host.Health        = (*Enemy)(nil)
	_ host.Mover         = (*Enemy)(nil)
	_ host.Enemy         = (*FieldEntity)(nil)
	_ host.FieldAccessor = (*FieldEntity)(nil)
)
