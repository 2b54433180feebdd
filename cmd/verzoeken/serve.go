package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/verzoeken/config"
	"github.com/Ramsey-B/verzoeken/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API until interrupted",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, sync, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.New(cfg, logger).Run(ctx)
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, ectologger.Logger, func() error, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, sync, err := app.NewLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, sync, nil
}

// withDatabase opens the pool for a one-off command and closes it afterwards.
func withDatabase(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, logger, sync, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = sync() }()

	a := app.New(cfg, logger)
	if err := a.OpenDatabase(ctx); err != nil {
		return err
	}
	defer a.Database().Close()

	return fn(ctx, a)
}
