package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/engine"
	"github.com/specialistvlad/beastgo/internal/loader"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *slog.Logger
	config *Config
	engine *engine.Engine
}

// NewApp is the constructor for the main application. Logs are written to
// logW. Components are preloaded from ComponentsPath; a failure to do so is a
// fatal startup error and panics.
func NewApp(logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	flavor := cfg.flavor()
	var components loader.Loader = loader.Map{}
	if cfg.ComponentsPath != "" {
		fsLoader, err := loader.NewDir(ctx, cfg.ComponentsPath, flavor.Extension())
		if err != nil {
			panic(fmt.Errorf("failed to load components: %w", err))
		}
		logger.Info("Components loaded.", "path", cfg.ComponentsPath, "count", len(fsLoader.Names(flavor.Extension())))
		components = fsLoader
	}

	eng, err := engine.New(engine.Config{Flavor: flavor, Loader: components})
	if err != nil {
		// This is a programmer error, the configuration was validated already.
		panic(err)
	}
	logger.Debug("Engine configured.", "flavor", flavor)

	return &App{
		logger: logger,
		config: cfg,
		engine: eng,
	}
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}
