package adapter

import (
	"log"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// EnemyAdapter moves enemy state between a live enemy and a record. Identity
// and activity are handled by the chain.
type EnemyAdapter interface {
	Name() string
	Fields() []string
	Supports(e host.Enemy) bool
	Collect(e host.Enemy, into *snapshot.Enemy)
	Apply(s snapshot.Enemy, e host.Enemy) bool
}

// StateEnemyAdapter handles enemies with health and movement.
type StateEnemyAdapter struct{}

// Name implements EnemyAdapter.
func (StateEnemyAdapter) Name() string { return "state" }

// Fields implements EnemyAdapter.
func (StateEnemyAdapter) Fields() []string { return EnemyFields.Names() }

// Supports implements EnemyAdapter.
func (StateEnemyAdapter) Supports(e host.Enemy) bool {
	_, health := e.(host.Health)
	_, mover := e.(host.Mover)
	return health && mover
}

// Collect implements EnemyAdapter.
func (StateEnemyAdapter) Collect(e host.Enemy, into *snapshot.Enemy) {
	into.CurrentHealth, into.MaxHealth = e.(host.Health).Health()
	into.Position = e.(host.Mover).Position()
}

// Apply implements EnemyAdapter.
func (StateEnemyAdapter) Apply(s snapshot.Enemy, e host.Enemy) bool {
	changed := false
	health := e.(host.Health)
	if current, max := health.Health(); current != s.CurrentHealth || max != s.MaxHealth {
		health.SetHealth(s.CurrentHealth, s.MaxHealth)
		changed = true
	}
	mover := e.(host.Mover)
	if mover.Position() != s.Position {
		mover.SetPosition(s.Position)
		changed = true
	}
	return changed
}

// EnemyChain resolves enemies against an ordered adapter list and
// reconciles the world's enemy set with a record.
type EnemyChain struct {
	adapters []EnemyAdapter
	logger   *log.Logger
}

// NewEnemyChain builds a chain. With no adapters the state adapter is used.
func NewEnemyChain(logger *log.Logger, adapters ...EnemyAdapter) *EnemyChain {
	if logger == nil {
		logger = log.Default()
	}
	if len(adapters) == 0 {
		adapters = []EnemyAdapter{StateEnemyAdapter{}}
	}
	return &EnemyChain{adapters: adapters, logger: logger}
}

func (c *EnemyChain) resolve(e host.Enemy) (EnemyAdapter, bool) {
	for _, a := range c.adapters {
		if a.Supports(e) {
			return a, true
		}
	}
	return nil, false
}

func (c *EnemyChain) handles(e host.Enemy) bool {
	if _, ok := c.resolve(e); ok {
		return true
	}
	_, ok := e.(host.FieldAccessor)
	return ok
}

// Collect captures one enemy. ok is false when nothing can read it.
func (c *EnemyChain) Collect(e host.Enemy) (snapshot.Enemy, bool) {
	if !c.handles(e) {
		return snapshot.Enemy{}, false
	}
	record := snapshot.Enemy{ID: e.EntityID(), Kind: e.Kind(), IsActive: e.Active()}
	var owned []string
	name := fieldsAdapterName
	if a, ok := c.resolve(e); ok {
		a.Collect(e, &record)
		owned = a.Fields()
		name = a.Name()
	}
	if remaining := EnemyFields.Without(owned); len(remaining) > 0 {
		accessor, _ := e.(host.FieldAccessor)
		if missing := collectFields(EnemyFields, remaining, accessor, &record); len(missing) > 0 {
			c.logger.Printf("enemy %s: %s adapter does not capture %v", record.ID, name, missing)
		}
	}
	return record, true
}

// CollectAll captures every enemy the world enumerates, in world order.
// Unreadable enemies and repeated ids are logged and left out; the call only
// fails when enemies exist but none could be read.
func (c *EnemyChain) CollectAll(world host.World) ([]snapshot.Enemy, error) {
	live := world.Enemies()
	out := make([]snapshot.Enemy, 0, len(live))
	seen := make(map[string]struct{}, len(live))
	for _, e := range live {
		record, ok := c.Collect(e)
		if !ok {
			c.logger.Printf("enemy %s (%s): no compatible adapter, not saved", e.EntityID(), e.Kind())
			continue
		}
		if record.ID == "" {
			c.logger.Printf("enemy of kind %s has no id, not saved", record.Kind)
			continue
		}
		if _, dup := seen[record.ID]; dup {
			c.logger.Printf("enemy %s: duplicate id, not saved", record.ID)
			continue
		}
		seen[record.ID] = struct{}{}
		out = append(out, record)
	}
	if len(live) > 0 && len(out) == 0 {
		return nil, apperrors.New(apperrors.CodeAdapterMissing, "no enemy adapter could read the world's enemies")
	}
	return out, nil
}

// Apply writes s onto a live enemy. Activity is not touched.
func (c *EnemyChain) Apply(s snapshot.Enemy, e host.Enemy) ApplyResult {
	result := ApplyResult{Adapter: fieldsAdapterName}
	var owned []string
	if a, ok := c.resolve(e); ok {
		result.Adapter = a.Name()
		result.Changed = a.Apply(s, e)
		owned = a.Fields()
	}
	if remaining := EnemyFields.Without(owned); len(remaining) > 0 {
		accessor, _ := e.(host.FieldAccessor)
		changed, skipped := applyFields(EnemyFields, remaining, &s, accessor)
		result.Changed = result.Changed || changed
		result.Skipped = skipped
	}
	if len(result.Skipped) > 0 {
		c.logger.Printf("enemy %s: %s adapter skipped %v", s.ID, result.Adapter, result.Skipped)
	}
	return result
}
