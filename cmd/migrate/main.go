// Package main brings the point-of-sale database up to the latest schema.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/postpos/internal/platform/cmd"
	"github.com/louisbranch/postpos/internal/platform/config"
	"github.com/louisbranch/postpos/internal/tools/migrate"
)

func main() {
	cfg, err := migrate.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMigrate, func(ctx context.Context) error {
		return migrate.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.ExitError(err, cfg.Locale)
	}
}
