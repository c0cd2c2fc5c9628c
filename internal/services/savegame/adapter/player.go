package adapter

import (
	"log"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// PlayerAdapter moves player state between an entity and a record.
type PlayerAdapter interface {
	Name() string
	// Fields lists the record fields the adapter owns.
	Fields() []string
	Supports(e host.Entity) bool
	Collect(e host.Entity) snapshot.Player
	// Apply writes the owned fields present in p and reports whether the
	// entity changed.
	Apply(p snapshot.Player, e host.Entity) bool
}

// CombatPlayerAdapter handles players with health, movement and attack state.
type CombatPlayerAdapter struct{}

// Name implements PlayerAdapter.
func (CombatPlayerAdapter) Name() string { return "combat" }

// Fields implements PlayerAdapter.
func (CombatPlayerAdapter) Fields() []string { return PlayerFields.Names() }

// Supports implements PlayerAdapter.
func (CombatPlayerAdapter) Supports(e host.Entity) bool {
	_, health := e.(host.Health)
	_, mover := e.(host.Mover)
	_, combat := e.(host.Combatant)
	return health && mover && combat
}

// Collect implements PlayerAdapter.
func (a CombatPlayerAdapter) Collect(e host.Entity) snapshot.Player {
	p := MovementPlayerAdapter{}.Collect(e)
	state := e.(host.Combatant).CombatState()
	p.AttackDamage = snapshot.IntPtr(state.AttackDamage)
	p.AttackCooldown = snapshot.FloatPtr(state.AttackCooldown)
	p.AttackRadius = snapshot.FloatPtr(state.AttackRadius)
	p.IsDead = snapshot.BoolPtr(state.IsDead)
	p.NextAttackTime = snapshot.FloatPtr(state.NextAttackTime)
	return p
}

// Apply implements PlayerAdapter.
func (a CombatPlayerAdapter) Apply(p snapshot.Player, e host.Entity) bool {
	changed := MovementPlayerAdapter{}.Apply(p, e)
	combatant := e.(host.Combatant)
	current := combatant.CombatState()
	next := current
	if p.AttackDamage != nil {
		next.AttackDamage = *p.AttackDamage
	}
	if p.AttackCooldown != nil {
		next.AttackCooldown = *p.AttackCooldown
	}
	if p.AttackRadius != nil {
		next.AttackRadius = *p.AttackRadius
	}
	if p.IsDead != nil {
		next.IsDead = *p.IsDead
	}
	if p.NextAttackTime != nil {
		next.NextAttackTime = *p.NextAttackTime
	}
	if next != current {
		combatant.SetCombatState(next)
		changed = true
	}
	return changed
}

// MovementPlayerAdapter handles players with only health and movement.
type MovementPlayerAdapter struct{}

// Name implements PlayerAdapter.
func (MovementPlayerAdapter) Name() string { return "movement" }

// Fields implements PlayerAdapter.
func (MovementPlayerAdapter) Fields() []string {
	return []string{"currentHealth", "maxHealth", "position", "facingRight"}
}

// Supports implements PlayerAdapter.
func (MovementPlayerAdapter) Supports(e host.Entity) bool {
	_, health := e.(host.Health)
	_, mover := e.(host.Mover)
	return health && mover
}

// Collect implements PlayerAdapter.
func (MovementPlayerAdapter) Collect(e host.Entity) snapshot.Player {
	current, max := e.(host.Health).Health()
	mover := e.(host.Mover)
	return snapshot.Player{
		CurrentHealth: current,
		MaxHealth:     max,
		Position:      mover.Position(),
		FacingRight:   mover.FacingRight(),
	}
}

// Apply implements PlayerAdapter.
func (MovementPlayerAdapter) Apply(p snapshot.Player, e host.Entity) bool {
	changed := false
	health := e.(host.Health)
	if current, max := health.Health(); current != p.CurrentHealth || max != p.MaxHealth {
		health.SetHealth(p.CurrentHealth, p.MaxHealth)
		changed = true
	}
	mover := e.(host.Mover)
	if mover.Position() != p.Position {
		mover.SetPosition(p.Position)
		changed = true
	}
	if mover.FacingRight() != p.FacingRight {
		mover.SetFacingRight(p.FacingRight)
		changed = true
	}
	return changed
}

// DefaultPlayerAdapters returns the built-in chain, richest first.
func DefaultPlayerAdapters() []PlayerAdapter {
	return []PlayerAdapter{CombatPlayerAdapter{}, MovementPlayerAdapter{}}
}

// ApplyResult describes one apply pass over an entity.
type ApplyResult struct {
	// Adapter names the adapter that handled the entity, or "fields" when
	// only the declared field accessor was used.
	Adapter string
	Changed bool
	// Skipped lists record fields present in the snapshot that the entity
	// could not take.
	Skipped []string
}

// fieldsAdapterName marks an entity handled only by its field accessor.
const fieldsAdapterName = "fields"

// PlayerChain resolves player entities against an ordered adapter list.
type PlayerChain struct {
	adapters []PlayerAdapter
	logger   *log.Logger
}

// NewPlayerChain builds a chain. With no adapters the defaults are used.
func NewPlayerChain(logger *log.Logger, adapters ...PlayerAdapter) *PlayerChain {
	if logger == nil {
		logger = log.Default()
	}
	if len(adapters) == 0 {
		adapters = DefaultPlayerAdapters()
	}
	return &PlayerChain{adapters: adapters, logger: logger}
}

// Resolve returns the first adapter supporting e.
func (c *PlayerChain) Resolve(e host.Entity) (PlayerAdapter, bool) {
	if c == nil || e == nil {
		return nil, false
	}
	for _, a := range c.adapters {
		if a.Supports(e) {
			return a, true
		}
	}
	return nil, false
}

// Check reports ADAPTER_MISSING when nothing in the chain can handle e.
func (c *PlayerChain) Check(e host.Entity) error {
	if e == nil {
		return apperrors.New(apperrors.CodeAdapterMissing, "no player entity in the world")
	}
	if _, ok := c.Resolve(e); ok {
		return nil
	}
	if _, ok := e.(host.FieldAccessor); ok {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeAdapterMissing, "player entity has no compatible adapter",
		map[string]string{"EntityID": e.EntityID()})
}

// Collect captures the player record from e.
func (c *PlayerChain) Collect(e host.Entity) (snapshot.Player, error) {
	if err := c.Check(e); err != nil {
		return snapshot.Player{}, err
	}
	var (
		p     snapshot.Player
		owned []string
		name  = fieldsAdapterName
	)
	if a, ok := c.Resolve(e); ok {
		p = a.Collect(e)
		owned = a.Fields()
		name = a.Name()
	}
	remaining := PlayerFields.Without(owned)
	if len(remaining) == 0 {
		return p, nil
	}
	accessor, _ := e.(host.FieldAccessor)
	if missing := collectFields(PlayerFields, remaining, accessor, &p); len(missing) > 0 {
		c.logger.Printf("player %s: %s adapter does not capture %v", e.EntityID(), name, missing)
	}
	return p, nil
}

// Apply writes p onto e. Fields the entity cannot take are logged and
// reported in the result.
func (c *PlayerChain) Apply(p snapshot.Player, e host.Entity) (ApplyResult, error) {
	if err := c.Check(e); err != nil {
		return ApplyResult{}, err
	}
	result := ApplyResult{Adapter: fieldsAdapterName}
	var owned []string
	if a, ok := c.Resolve(e); ok {
		result.Adapter = a.Name()
		result.Changed = a.Apply(p, e)
		owned = a.Fields()
	}
	remaining := PlayerFields.Without(owned)
	if len(remaining) > 0 {
		accessor, _ := e.(host.FieldAccessor)
		changed, skipped := applyFields(PlayerFields, remaining, &p, accessor)
		result.Changed = result.Changed || changed
		result.Skipped = skipped
	}
	if len(result.Skipped) > 0 {
		c.logger.Printf("player %s: %s adapter skipped %v", e.EntityID(), result.Adapter, result.Skipped)
	}
	return result, nil
}
