package storage

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
)

// MaxSlots is the fixed number of save slots.
const MaxSlots = 3

// KeyPrefix prefixes every slot storage key.
const KeyPrefix = "save_"

// SlotStatus describes what a slot currently holds.
type SlotStatus string

const (
	SlotEmpty    SlotStatus = "empty"
	SlotOccupied SlotStatus = "occupied"
	SlotCorrupt  SlotStatus = "corrupt"
)

// SlotSummary is one entry of ListSummaries. Summary is set only for
// occupied slots.
type SlotSummary struct {
	Index   int
	Status  SlotStatus
	Summary snapshot.Summary
}

// Occupied reports whether the slot holds a readable record.
func (s SlotSummary) Occupied() bool {
	return s.Status == SlotOccupied
}

// SlotStore persists one snapshot per slot index.
//
// Read returns found=false for a slot with no record. A record that exists
// but does not decode is a CORRUPT_RECORD error and is left in place.
// Delete of an empty slot is a no-op. Index outside [0, MaxSlots) is an
// INVALID_SLOT_INDEX error for every method.
type SlotStore interface {
	Write(ctx context.Context, slot int, snap snapshot.Snapshot) error
	Read(ctx context.Context, slot int) (snapshot.Snapshot, bool, error)
	Delete(ctx context.Context, slot int) error
	ListSummaries(ctx context.Context) ([]SlotSummary, error)
}

// Preferences is the small key-value store that remembers player choices
// such as the quick-save slot across sessions.
type Preferences interface {
	GetInt(ctx context.Context, key string, fallback int) (int, error)
	SetInt(ctx context.Context, key string, value int) error
}

// ValidateSlot reports an INVALID_SLOT_INDEX error for out-of-range indexes.
func ValidateSlot(slot int) error {
	if slot < 0 || slot >= MaxSlots {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidSlotIndex,
			fmt.Sprintf("slot index %d outside [0, %d)", slot, MaxSlots),
			map[string]string{"Slot": strconv.Itoa(slot)},
		)
	}
	return nil
}

// SlotKey returns the storage key of a slot.
func SlotKey(slot int) string {
	return KeyPrefix + strconv.Itoa(slot)
}

// MostRecent returns the occupied slot with the latest SavedAt. Ties go to
// the earlier entry. ok is false when no slot is occupied.
func MostRecent(summaries []SlotSummary) (slot int, ok bool) {
	best := -1
	for i, summary := range summaries {
		if !summary.Occupied() {
			continue
		}
		if best == -1 || summary.Summary.SavedAt.After(summaries[best].Summary.SavedAt) {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return summaries[best].Index, true
}
