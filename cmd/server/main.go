package main

import (
	"log/slog"
	"os"

	"go-media-cms/internal/app"
	"go-media-cms/internal/config"
	"go-media-cms/internal/logger"
)

func main() {
	// Pretty logger until the config says otherwise
	slog.SetDefault(logger.New(os.Stdout, "info", "pretty"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	application, err := app.New(cfg, log)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
