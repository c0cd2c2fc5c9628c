package adapter

import (
	"math"

	"github.com/louisbranch/savepoint/internal/services/savegame/host"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// Field is one declared record field of category T.
type Field[T any] struct {
	Name string
	// Get returns the field value; ok is false when the record has no value.
	Get func(*T) (value any, ok bool)
	// Set stores value; it reports false when value does not convert.
	Set func(*T, any) bool
}

// FieldSchema is the declared, versioned field list of one category.
type FieldSchema[T any] struct {
	Category string
	Version  int
	Fields   []Field[T]
}

// Names lists the field names in declaration order.
func (s FieldSchema[T]) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Lookup finds a field by name.
func (s FieldSchema[T]) Lookup(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Without lists the declared names not in owned.
func (s FieldSchema[T]) Without(owned []string) []string {
	skip := make(map[string]struct{}, len(owned))
	for _, name := range owned {
		skip[name] = struct{}{}
	}
	var out []string
	for _, f := range s.Fields {
		if _, ok := skip[f.Name]; !ok {
			out = append(out, f.Name)
		}
	}
	return out
}

// PlayerFields declares the player record fields.
var PlayerFields = FieldSchema[snapshot.Player]{
	Category: "player",
	Version:  snapshot.CurrentVersion,
	Fields: []Field[snapshot.Player]{
		intField("currentHealth", func(p *snapshot.Player) *int { return &p.CurrentHealth }),
		intField("maxHealth", func(p *snapshot.Player) *int { return &p.MaxHealth }),
		vecField("position", func(p *snapshot.Player) *snapshot.Vec3 { return &p.Position }),
		{
			Name: "facingRight",
			Get:  func(p *snapshot.Player) (any, bool) { return p.FacingRight, true },
			Set: func(p *snapshot.Player, v any) bool {
				b, ok := v.(bool)
				if ok {
					p.FacingRight = b
				}
				return ok
			},
		},
		{
			Name: "attackDamage",
			Get:  func(p *snapshot.Player) (any, bool) { return derefInt(p.AttackDamage) },
			Set: func(p *snapshot.Player, v any) bool {
				n, ok := toInt(v)
				if ok {
					p.AttackDamage = snapshot.IntPtr(n)
				}
				return ok
			},
		},
		optionalFloatField("attackCooldown", func(p *snapshot.Player) **float64 { return &p.AttackCooldown }),
		optionalFloatField("attackRadius", func(p *snapshot.Player) **float64 { return &p.AttackRadius }),
		{
			Name: "isDead",
			Get: func(p *snapshot.Player) (any, bool) {
				if p.IsDead == nil {
					return nil, false
				}
				return *p.IsDead, true
			},
			Set: func(p *snapshot.Player, v any) bool {
				b, ok := v.(bool)
				if ok {
					p.IsDead = snapshot.BoolPtr(b)
				}
				return ok
			},
		},
		optionalFloatField("nextAttackTime", func(p *snapshot.Player) **float64 { return &p.NextAttackTime }),
	},
}

// EnemyFields declares the enemy record fields an adapter may own. The id,
// kind and active flag always come from the world's enemy handle.
var EnemyFields = FieldSchema[snapshot.Enemy]{
	Category: "enemy",
	Version:  snapshot.CurrentVersion,
	Fields: []Field[snapshot.Enemy]{
		intField("currentHealth", func(e *snapshot.Enemy) *int { return &e.CurrentHealth }),
		intField("maxHealth", func(e *snapshot.Enemy) *int { return &e.MaxHealth }),
		vecField("position", func(e *snapshot.Enemy) *snapshot.Vec3 { return &e.Position }),
	},
}

// collectFields reads names from accessor into target and returns the names
// the accessor could not provide.
func collectFields[T any](schema FieldSchema[T], names []string, accessor host.FieldAccessor, target *T) (missing []string) {
	for _, name := range names {
		f, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		if accessor == nil {
			missing = append(missing, name)
			continue
		}
		value, ok := accessor.Field(name)
		if !ok || !f.Set(target, value) {
			missing = append(missing, name)
		}
	}
	return missing
}

// applyFields writes the present values of names through accessor. It skips
// values the entity already holds and returns names it could not set.
func applyFields[T any](schema FieldSchema[T], names []string, source *T, accessor host.FieldAccessor) (changed bool, skipped []string) {
	for _, name := range names {
		f, ok := schema.Lookup(name)
		if !ok {
			continue
		}
		value, present := f.Get(source)
		if !present {
			continue
		}
		if accessor == nil {
			skipped = append(skipped, name)
			continue
		}
		if current, ok := accessor.Field(name); ok && sameValue(current, value) {
			continue
		}
		if !accessor.SetField(name, value) {
			skipped = append(skipped, name)
			continue
		}
		changed = true
	}
	return changed, skipped
}

func intField[T any](name string, ref func(*T) *int) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(t *T) (any, bool) { return *ref(t), true },
		Set: func(t *T, v any) bool {
			n, ok := toInt(v)
			if ok {
				*ref(t) = n
			}
			return ok
		},
	}
}

func vecField[T any](name string, ref func(*T) *snapshot.Vec3) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(t *T) (any, bool) { return *ref(t), true },
		Set: func(t *T, v any) bool {
			vec, ok := toVec3(v)
			if ok {
				*ref(t) = vec
			}
			return ok
		},
	}
}

func optionalFloatField[T any](name string, ref func(*T) **float64) Field[T] {
	return Field[T]{
		Name: name,
		Get: func(t *T) (any, bool) {
			p := *ref(t)
			if p == nil {
				return nil, false
			}
			return *p, true
		},
		Set: func(t *T, v any) bool {
			f, ok := toFloat(v)
			if ok {
				*ref(t) = snapshot.FloatPtr(f)
			}
			return ok
		},
	}
}

func derefInt(p *int) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toVec3(v any) (snapshot.Vec3, bool) {
	switch vec := v.(type) {
	case snapshot.Vec3:
		return vec, true
	case [3]float64:
		return snapshot.Vec3(vec), true
	case []float64:
		if len(vec) == 3 {
			return snapshot.Vec3{vec[0], vec[1], vec[2]}, true
		}
	case []any:
		if len(vec) != 3 {
			return snapshot.Vec3{}, false
		}
		var out snapshot.Vec3
		for i, component := range vec {
			f, ok := toFloat(component)
			if !ok {
				return snapshot.Vec3{}, false
			}
			out[i] = f
		}
		return out, true
	}
	return snapshot.Vec3{}, false
}

// sameValue compares field values across the numeric and vector encodings
// entities may use.
func sameValue(a, b any) bool {
	if va, ok := toVec3(a); ok {
		vb, ok := toVec3(b)
		return ok && va == vb
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return false
}
