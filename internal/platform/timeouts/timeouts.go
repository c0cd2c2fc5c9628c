// Package timeouts defines shared durations used by the save subsystem and
// its tools. Centralizing these values keeps the tools and tests in step.
package timeouts

import "time"

// SettleTick is the fallback settle delay between scene readiness and data
// application when the host has no frame scheduler of its own.
const SettleTick = 16 * time.Millisecond

// AutoSaveInterval is the default period between automatic saves.
const AutoSaveInterval = 5 * time.Minute

// FrameStep is the simulated frame duration used by the scenario runner.
const FrameStep = 16 * time.Millisecond

// Shutdown limits how long a tool waits for telemetry to flush on exit.
const Shutdown = 5 * time.Second
