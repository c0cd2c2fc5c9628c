package snapshot

import (
	"fmt"
	"strings"
	"time"
)

// Vec3 is a world position encoded as [x, y, z].
type Vec3 [3]float64

// Player is the persisted player state.
//
// The attack fields are optional: only a combat-aware adapter fills them, and
// a nil value means the record carries no data for that field.
type Player struct {
	CurrentHealth  int      `json:"currentHealth"`
	MaxHealth      int      `json:"maxHealth"`
	Position       Vec3     `json:"position"`
	FacingRight    bool     `json:"facingRight"`
	AttackDamage   *int     `json:"attackDamage,omitempty"`
	AttackCooldown *float64 `json:"attackCooldown,omitempty"`
	AttackRadius   *float64 `json:"attackRadius,omitempty"`
	IsDead         *bool    `json:"isDead,omitempty"`
	NextAttackTime *float64 `json:"nextAttackTime,omitempty"`
}

// HasCombat reports whether any attack-related field is present.
func (p Player) HasCombat() bool {
	return p.AttackDamage != nil || p.AttackCooldown != nil || p.AttackRadius != nil ||
		p.IsDead != nil || p.NextAttackTime != nil
}

// Enemy is the persisted state of one enemy instance. ID is the join key used
// by reconciliation.
type Enemy struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	CurrentHealth int    `json:"currentHealth"`
	MaxHealth     int    `json:"maxHealth"`
	Position      Vec3   `json:"position"`
	IsActive      bool   `json:"isActive"`
}

// Progress is the persisted run progress.
type Progress struct {
	Level           int     `json:"level"`
	PlayTimeSeconds float64 `json:"playTimeSeconds"`
	Score           int     `json:"score"`
}

// Snapshot is the full state of one save point.
type Snapshot struct {
	SaveName  string
	SavedAt   time.Time
	SceneName string
	Player    Player
	Enemies   []Enemy
	Progress  Progress
}

// Validate checks the invariants a snapshot must hold before it is written.
func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.SceneName) == "" {
		return fmt.Errorf("scene name is required")
	}
	seen := make(map[string]struct{}, len(s.Enemies))
	for i, enemy := range s.Enemies {
		if strings.TrimSpace(enemy.ID) == "" {
			return fmt.Errorf("enemy %d: id is required", i)
		}
		if _, dup := seen[enemy.ID]; dup {
			return fmt.Errorf("enemy %d: duplicate id %q", i, enemy.ID)
		}
		seen[enemy.ID] = struct{}{}
	}
	return nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
