package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/louisbranch/savepoint/internal/services/savegame/storage/slotfs"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage/sqlite"
)

// Stores are the durable backends named by a Config.
type Stores struct {
	Slots       *slotfs.Store
	Preferences *sqlite.Store
}

// OpenStores opens the slot directory and the preferences database.
func OpenStores(ctx context.Context, cfg Config, logger *log.Logger) (*Stores, error) {
	slots, err := slotfs.Open(cfg.SaveDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open slot store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.PrefsPath), 0o700); err != nil {
		return nil, fmt.Errorf("create preferences directory: %w", err)
	}
	prefs, err := sqlite.Open(ctx, cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	return &Stores{Slots: slots, Preferences: prefs}, nil
}

// Close releases the preferences database.
func (s *Stores) Close() error {
	if s == nil || s.Preferences == nil {
		return nil
	}
	return s.Preferences.Close()
}
