// Package slots wires the slots command: an operator view over a save
// directory that lists slot summaries, deletes a slot, or prints the record
// schema.
package slots

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"text/tabwriter"
	"time"

	platformcmd "github.com/louisbranch/savepoint/internal/platform/cmd"
	"github.com/louisbranch/savepoint/internal/services/savegame/snapshot"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage"
	"github.com/louisbranch/savepoint/internal/services/savegame/storage/slotfs"
)

// Config holds slots command configuration.
type Config struct {
	Dir    string `env:"SAVEPOINT_SAVE_DIR" envDefault:"saves"`
	Delete int
	Schema bool
}

// ParseConfig parses env and flags into a Config. Delete is -1 unless a
// slot was given.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Delete: -1}
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "save directory")
	fs.IntVar(&cfg.Delete, "delete", cfg.Delete, "delete this slot index before listing")
	fs.BoolVar(&cfg.Schema, "schema", cfg.Schema, "print the save record JSON Schema and exit")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the slots command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Schema {
		data, err := snapshot.SchemaJSON()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	store, err := slotfs.Open(cfg.Dir, log.New(errOut, "", 0))
	if err != nil {
		return err
	}
	if cfg.Delete >= 0 {
		if err := store.Delete(ctx, cfg.Delete); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted slot %d\n", cfg.Delete)
	}
	summaries, err := store.ListSummaries(ctx)
	if err != nil {
		return err
	}
	return writeSummaries(out, summaries)
}

func writeSummaries(out io.Writer, summaries []storage.SlotSummary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLOT\tSTATUS\tNAME\tSCENE\tHEALTH\tPLAYED\tSAVED")
	for _, s := range summaries {
		if !s.Occupied() {
			fmt.Fprintf(w, "%d\t%s\t\t\t\t\t\n", s.Index, s.Status)
			continue
		}
		played := time.Duration(s.Summary.PlayTimeSeconds * float64(time.Second)).Round(time.Second)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Index, s.Status, s.Summary.SaveName, s.Summary.SceneName,
			strconv.Itoa(s.Summary.PlayerHealth), played, s.Summary.SavedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
