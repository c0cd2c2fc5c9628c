package slotfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/savepoint/internal/platform/errors"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
)

const (
	recordExt = ".json"
	tempExt   = ".tmp"
	dirPerm   = 0o700
	filePerm  = 0o600
)

// Store provides filesystem-backed slot persistence.
type Store struct {
	dir    string
	logger *log.Logger

	// rename is swapped in tests to simulate a failing replace.
	rename func(oldpath, newpath string) error
}

// Open prepares dir for slot records and clears temporary files left by
// interrupted writes.
func Open(dir string, logger *log.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("save directory is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	store := &Store{dir: cleanDir, logger: logger, rename: os.Rename}
	store.removeStaleTemps()
	return store, nil
}

// Dir returns the directory holding the slot records.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record path of slot.
func (s *Store) Path(slot int) string {
	return filepath.Join(s.dir, storage.SlotKey(slot)+recordExt)
}

// Write replaces the record of slot. The previous record stays intact unless
// the new one is fully written.
func (s *Store) Write(ctx context.Context, slot int, snap snapshot.Snapshot) error {
	if err := s.check(ctx, slot); err != nil {
		return err
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		return ioFailure(slot, "encode slot record", err)
	}

	tmp, err := os.CreateTemp(s.dir, storage.SlotKey(slot)+"-*"+tempExt)
	if err != nil {
		return ioFailure(slot, "create temp record", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ioFailure(slot, "write temp record", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ioFailure(slot, "sync temp record", err)
	}
	if err := tmp.Close(); err != nil {
		return ioFailure(slot, "close temp record", err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return ioFailure(slot, "chmod temp record", err)
	}
	if err := s.rename(tmpPath, s.Path(slot)); err != nil {
		return ioFailure(slot, "replace slot record", err)
	}
	committed = true
	return nil
}

// Read loads the record of slot.
func (s *Store) Read(ctx context.Context, slot int) (snapshot.Snapshot, bool, error) {
	if err := s.check(ctx, slot); err != nil {
		return snapshot.Snapshot{}, false, err
	}
	data, err := os.ReadFile(s.Path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot.Snapshot{}, false, nil
	}
	if err != nil {
		return snapshot.Snapshot{}, false, ioFailure(slot, "read slot record", err)
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		return snapshot.Snapshot{}, false, apperrors.WrapWithMetadata(
			apperrors.CodeCorruptRecord,
			fmt.Sprintf("slot %d record is corrupt", slot),
			slotMetadata(slot),
			err,
		)
	}
	return snap, true, nil
}

// Delete removes the record of slot if present.
func (s *Store) Delete(ctx context.Context, slot int) error {
	if err := s.check(ctx, slot); err != nil {
		return err
	}
	err := os.Remove(s.Path(slot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioFailure(slot, "delete slot record", err)
	}
	return nil
}

// ListSummaries reports every slot in index order.
func (s *Store) ListSummaries(ctx context.Context) ([]storage.SlotSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]storage.SlotSummary, 0, storage.MaxSlots)
	for slot := 0; slot < storage.MaxSlots; slot++ {
		data, err := os.ReadFile(s.Path(slot))
		if errors.Is(err, fs.ErrNotExist) {
			out = append(out, storage.SlotSummary{Index: slot, Status: storage.SlotEmpty})
			continue
		}
		if err != nil {
			return nil, ioFailure(slot, "read slot record", err)
		}
		summary, err := snapshot.DecodeSummary(data)
		if err != nil {
			s.logger.Printf("slot %d: unreadable record: %v", slot, err)
			out = append(out, storage.SlotSummary{Index: slot, Status: storage.SlotCorrupt})
			continue
		}
		out = append(out, storage.SlotSummary{Index: slot, Status: storage.SlotOccupied, Summary: summary})
	}
	return out, nil
}

func (s *Store) check(ctx context.Context, slot int) error {
	if s == nil || s.dir == "" {
		return fmt.Errorf("storage is not configured")
	}
	if err := storage.ValidateSlot(slot); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Store) removeStaleTemps() {
	matches, err := filepath.Glob(filepath.Join(s.dir, storage.KeyPrefix+"*"+tempExt))
	if err != nil {
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err == nil {
			s.logger.Printf("removed interrupted write %s", filepath.Base(match))
		}
	}
}

func ioFailure(slot int, message string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeIOFailure, message, slotMetadata(slot), cause)
}

func slotMetadata(slot int) map[string]string {
	return map[string]string{"Slot": strconv.Itoa(slot)}
}

var _ storage.SlotStore = (*Store)(nil)
