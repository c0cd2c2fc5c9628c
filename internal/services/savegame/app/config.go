package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/savepoint/internal/platform/config"
	"github.com/louisbranch/savepoint/internal/platform/timeouts"
)

// Config holds save subsystem settings.
type Config struct {
	SaveDir          string        `env:"SAVEPOINT_SAVE_DIR" envDefault:"saves"`
	PrefsPath        string        `env:"SAVEPOINT_PREFS_PATH" envDefault:"saves/preferences.db"`
	AutoSaveInterval time.Duration `env:"SAVEPOINT_AUTOSAVE_INTERVAL" envDefault:"5m"`
	AutoSaveEnabled  bool          `env:"SAVEPOINT_AUTOSAVE_ENABLED" envDefault:"false"`
	MenuScene        string        `env:"SAVEPOINT_MENU_SCENE" envDefault:"MainMenu"`
	Locale           string        `env:"SAVEPOINT_LOCALE" envDefault:"en-US"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

// LoadConfigFrom reads Config from vars, applying the same defaults.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, vars); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.SaveDir) == "" {
		return fmt.Errorf("save dir is required")
	}
	if c.AutoSaveInterval < 0 {
		return fmt.Errorf("auto-save interval must not be negative")
	}
	return nil
}

func (c Config) autoSaveInterval() time.Duration {
	if c.AutoSaveInterval <= 0 {
		return timeouts.AutoSaveInterval
	}
	return c.AutoSaveInterval
}
