package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rafbgarcia/counterpage/internal/watcher"
)

func runDev(cmd *cobra.Command) error {
	app, log, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.TemplatesDir == "" {
		return fmt.Errorf("dev: --templates must not be empty")
	}

	w := watcher.New(cfg.TemplatesDir, func(batch []watcher.Event) {
		for _, ev := range batch {
			log.Debug("template changed", "path", ev.Path, "kind", ev.Kind)
		}
		if err := app.Renderer().Reload(); err != nil {
			log.Warn("template reload failed, keeping previous templates", "err", err)
			return
		}
		log.Info("templates reloaded", "files", len(batch))
	})
	if err := w.Start(); err != nil {
		return fmt.Errorf("dev: watch %s: %w", cfg.TemplatesDir, err)
	}
	defer w.Stop()
	log.Info("watching templates", "dir", cfg.TemplatesDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.ListenAndServe(ctx)
}
