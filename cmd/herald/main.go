package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nocwatch/herald/internal/app"
	"github.com/nocwatch/herald/internal/config"
	"github.com/nocwatch/herald/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "herald start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("herald starting", "config", map[string]any{
		"app_name":  cfg.AppName,
		"env":       cfg.Env,
		"server":    cfg.IRCServer,
		"channel":   cfg.IRCChannel,
		"trigger":   cfg.Trigger,
		"poll":      cfg.DefaultPollInterval.String(),
		"marker":    cfg.MarkerStore,
		"notifiers": cfg.NotifiersFile != "",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	herald, err := app.NewHerald(ctx, cfg, logger.Default())
	if err != nil {
		logger.ErrorObj("failed to initialize herald", "error", err)
		return err
	}

	if err := herald.Run(ctx); err != nil {
		return fmt.Errorf("herald run: %w", err)
	}

	return nil
}
