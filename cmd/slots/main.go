// Package main provides a CLI for inspecting and clearing save slots.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	slotscmd "github.com/louisbranch/savepoint/internal/cmd/slots"
	platformcmd "github.com/louisbranch/savepoint/internal/platform/cmd"
	"github.com/louisbranch/savepoint/internal/platform/config"
)

func main() {
	log.SetPrefix("[SLOTS] ")
	cfg, err := slotscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ToolSlots, func(ctx context.Context) error {
		return slotscmd.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
