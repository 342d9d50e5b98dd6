package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	counterpage "github.com/rafbgarcia/counterpage"
	"github.com/rafbgarcia/counterpage/internal/config"
)

// setup loads configuration from the command's flags and builds the app.
func setup(cmd *cobra.Command) (*counterpage.App, *counterpage.Logger, config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	log := counterpage.NewLoggerTo(os.Stdout, cfg.LogLevel)
	app, err := counterpage.NewApp(cfg, log)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return app, log, cfg, nil
}

func runServe(cmd *cobra.Command) error {
	app, _, _, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.ListenAndServe(ctx)
}
