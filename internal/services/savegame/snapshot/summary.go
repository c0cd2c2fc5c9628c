package snapshot

import (
	"fmt"
	"time"
)

// Summary is the light projection shown in slot pickers.
type Summary struct {
	SaveName        string
	SavedAt         time.Time
	SceneName       string
	PlayerHealth    int
	PlayTimeSeconds float64
}

// DecodeSummary reads a record for a slot picker. It accepts exactly the
// records Decode accepts, so a listed slot is always loadable.
func DecodeSummary(data []byte) (Summary, error) {
	snap, err := Decode(data)
	if err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	return Summarize(snap), nil
}

// Summarize projects a decoded snapshot.
func Summarize(s Snapshot) Summary {
	return Summary{
		SaveName:        s.SaveName,
		SavedAt:         s.SavedAt,
		SceneName:       s.SceneName,
		PlayerHealth:    s.Player.CurrentHealth,
		PlayTimeSeconds: s.Progress.PlayTimeSeconds,
	}
}
