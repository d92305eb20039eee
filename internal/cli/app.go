package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/grunwald/internal/config"
	"codeberg.org/snonux/grunwald/internal/image"
	"codeberg.org/snonux/grunwald/internal/logging"
	"codeberg.org/snonux/grunwald/internal/parser"
	"codeberg.org/snonux/grunwald/internal/storage"
	"codeberg.org/snonux/grunwald/internal/store"
	"codeberg.org/snonux/grunwald/internal/wiktionary"
)

// app is the wired pipeline one command runs against
type app struct {
	cfg      config.Config
	log      *slog.Logger
	store    *store.Store
	pipeline *storage.Storage
	images   *image.Provider
}

// loadConfig reads the configuration and builds the logger for cmd
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return cfg, logger, nil
}

// openApp opens the database and wires the fetchers, the orchestrator and
// the image provider
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cmd.Context(), cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	p := parser.New(cfg.Dictionary.Language, parser.WithLogger(logger))
	client := wiktionary.NewClient(cfg.Client(), logger)
	pipeline := storage.New(st, wiktionary.NewContentFetcher(client, p), nil, logger)
	imageFetcher := wiktionary.NewImageFetcher(client, p)
	imageFetcher.OnPhase = func(name string, phase wiktionary.Phase) {
		logger.Debug("image fetch", "name", name, "phase", phase.String())
	}
	images := image.NewProvider(pipeline.Cache(), imageFetcher, cfg.ImageSize(), logger)

	return &app{
		cfg:      cfg,
		log:      logger,
		store:    st,
		pipeline: pipeline,
		images:   images,
	}, nil
}

func (a *app) close() {
	a.pipeline.Wait()
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
}
