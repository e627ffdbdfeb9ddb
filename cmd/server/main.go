package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mcoot/tilekeeper/internal/api"
	"github.com/mcoot/tilekeeper/internal/config"
	"github.com/mcoot/tilekeeper/internal/factory"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		slog.Error("invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("could not read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.LogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.FactoryConfig(logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	// Load dictionary
	ctx := context.Background()
	if cfg.Dictionary.Path != "" {
		err = app.DictionaryService.LoadFromFile(ctx, cfg.Dictionary.Path)
	} else {
		err = app.DictionaryService.LoadFromStorage(ctx)
	}
	if err != nil {
		logger.Warn("could not load dictionary", slog.String("error", err.Error()))
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		Dictionary:     app.DictionaryService,
		Letters:        app.Letters,
		Archive:        app.Archive,
		HubManager:     app.HubManager,
		Layout:         app.Layout,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	// Create server
	server := api.NewServer(mux, cfg.ServerConfig(), logger)

	// Stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("archive", cfg.Archive.Path),
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return
	}

	logger.Info("server stopped")
}
