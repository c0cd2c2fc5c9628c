package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if cfg.Keep || cfg.Verbose {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-scenario", "a.lua", "-verbose"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "a.lua" || !cfg.Verbose {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected error without scenario")
	}
	if err := Run(context.Background(), Config{Scenario: "a.lua", Dir: "b"}, nil, nil); err == nil {
		t.Fatal("expected error with both scenario and dir")
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := `
local s = Scenario.new("cli probe")
s:scene("Level1")
s:player({health = 5})
s:change_scene("Level1")
s:save(0)
s:expect_slot(0, {status = "occupied", health = 5})
return s
`
	path := filepath.Join(dir, "probe.lua")
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, Timeout: 10 * time.Second}, &out, nil); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "PASS cli probe") {
		t.Fatalf("output = %q", out.String())
	}
}
