package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"landmark-picker/internal/app"
	"landmark-picker/internal/config"
	"landmark-picker/internal/logger"
	"landmark-picker/internal/models"
	"landmark-picker/internal/shutdown"
)

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	if cfg.WriteConfig != "" {
		if err := config.Save(cfg, cfg.WriteConfig); err != nil {
			log.Fatalf("Writing configuration failed: %v", err)
		}
		return
	}

	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	appLogger := logger.New(os.Stdout, logger.ParseLevel(level), cfg.JSONLogs)

	application, err := app.NewApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = application.Run(ctx)
	if errors.Is(err, shutdown.ErrInterrupted) {
		appLogger.Warning("main", "annotation interrupted; staged picks kept for -resume", map[string]interface{}{
			"save_dir": cfg.SaveDir,
		})
		return
	}
	if err != nil {
		appLogger.Error("main", err, map[string]interface{}{
			"image":   cfg.ImageSource,
			"invalid": errors.Is(err, models.ErrInvalidImage),
		})
		os.Exit(1)
	}

	appLogger.Info("main", "annotation finished", map[string]interface{}{
		"output": cfg.OutputPath(),
	})
}
