// Package scenario wires the scenario command: it runs Lua save/load
// scripts against an in-memory game host with real slot and preference
// stores in a scratch directory.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	platformcmd "github.com/louisbranch/savepoint/internal/platform/cmd"
	"github.com/louisbranch/savepoint/internal/services/savegame/app"
	"github.com/louisbranch/savepoint/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario string        `env:"SAVEPOINT_SCENARIO_FILE"`
	Dir      string        `env:"SAVEPOINT_SCENARIO_DIR"`
	Keep     bool          `env:"SAVEPOINT_SCENARIO_KEEP"`
	Verbose  bool          `env:"SAVEPOINT_SCENARIO_VERBOSE"`
	Timeout  time.Duration `env:"SAVEPOINT_SCENARIO_TIMEOUT" envDefault:"30s"`
}

// ParseConfig parses env and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a scenario lua file")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "run every *.lua scenario in this directory")
	fs.BoolVar(&cfg.Keep, "keep", cfg.Keep, "keep each scenario's save directory")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log coordinator output")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per scenario")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the selected scenarios and prints one line per scenario.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	paths, err := scenarioPaths(cfg)
	if err != nil {
		return err
	}
	base, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logWriter := io.Discard
	if cfg.Verbose {
		logWriter = errOut
	}
	logger := log.New(logWriter, "", log.LstdFlags)

	failed := 0
	for _, path := range paths {
		if err := runOne(ctx, cfg, base, logger, path, out); err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}
	return nil
}

func runOne(ctx context.Context, cfg Config, base app.Config, logger *log.Logger, path string, out io.Writer) error {
	s, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp("", "savepoint-scenario-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	if cfg.Keep {
		fmt.Fprintf(out, "saves for %s kept in %s\n", s.Name, dir)
	} else {
		defer os.RemoveAll(dir)
	}
	runCfg := base
	runCfg.SaveDir = dir
	runCfg.PrefsPath = filepath.Join(dir, "preferences.db")

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	runner := &scenario.Runner{Config: runCfg, Logger: logger}
	report, err := runner.Run(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "PASS %s (%d steps, %d notifications)\n", report.Name, report.Steps, len(report.Notifications))
	return nil
}

func scenarioPaths(cfg Config) ([]string, error) {
	switch {
	case cfg.Scenario != "" && cfg.Dir != "":
		return nil, errors.New("use either -scenario or -dir, not both")
	case cfg.Scenario != "":
		return []string{cfg.Scenario}, nil
	case cfg.Dir != "":
		paths, err := filepath.Glob(filepath.Join(cfg.Dir, "*.lua"))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no scenarios in %s", cfg.Dir)
		}
		return paths, nil
	default:
		return nil, errors.New("scenario path is required")
	}
}
