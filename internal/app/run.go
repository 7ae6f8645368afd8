package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/beastgo/internal/binding"
	"github.com/specialistvlad/beastgo/internal/ctxlog"
	"github.com/specialistvlad/beastgo/internal/engine"
)

// Run renders the configured template or component and writes the result to
// OutputPath, or to outW when no output file is configured.
func (a *App) Run(ctx context.Context, outW io.Writer) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	vars, err := a.bindings()
	if err != nil {
		return err
	}

	var result string
	if a.config.ComponentName != "" {
		a.logger.Info("Rendering component.", "component", a.config.ComponentName, "static", a.config.Static)
		result, err = a.engine.ProcessComponent(ctx, a.config.ComponentName, vars, a.config.Static)
	} else {
		var src []byte
		src, err = os.ReadFile(a.config.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		a.logger.Info("Rendering template.", "path", a.config.TemplatePath)
		result, err = a.engine.Process(ctx, string(src), vars)
	}
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if err := a.write(result, outW); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.", "bytes", len(result))
	return nil
}

func (a *App) bindings() (*binding.Context, error) {
	locale := a.config.locale()
	vars := binding.New(locale)
	if a.config.ContextPath != "" {
		loaded, err := LoadBindings(a.config.ContextPath, locale)
		if err != nil {
			return nil, err
		}
		vars = loaded
		a.logger.Debug("Context loaded.", "path", a.config.ContextPath, "variables", vars.Len())
	}
	if a.config.RoutePath != "" {
		vars.Set(engine.DefaultRouteVariable, a.config.RoutePath)
	}
	return vars, nil
}

func (a *App) write(result string, outW io.Writer) error {
	if a.config.OutputPath == "" || a.config.OutputPath == "-" {
		_, err := io.WriteString(outW, result)
		return err
	}
	if err := os.WriteFile(a.config.OutputPath, []byte(result), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Info("Output written.", "path", a.config.OutputPath)
	return nil
}
