package main

import (
	"context"
	"errors"
	"os"

	"loanschedule/internal/backend"
	"loanschedule/internal/cli"
	"loanschedule/internal/config"
)

func main() {
	cli.LoadEnvFile()
	// Validated by the app once flag overrides are applied.
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	app := cli.NewRunner(cfg, logger, backend.NewFactory(logger)).NewApp()
	if err := app.RunContext(ctx, os.Args); err != nil {
		cancel()
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
