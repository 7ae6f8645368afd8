package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/beastgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("beastgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
BeastGo - A directive-driven template renderer with cached static components.

Usage:
  beastgo [options] [TEMPLATE_PATH]
  beastgo [options] -component NAME [-static]

Arguments:
  TEMPLATE_PATH
    Path to the template file to render.

Options:
`)
		flagSet.PrintDefaults()
	}

	templateFlag := flagSet.String("template", "", "Path to the template file.")
	tFlag := flagSet.String("t", "", "Path to the template file (shorthand).")
	componentFlag := flagSet.String("component", "", "Render the named component instead of a template file.")
	staticFlag := flagSet.Bool("static", false, "Render -component through the static component store.")
	contextFlag := flagSet.String("context", "", "Path to a YAML or JSON file with the render variables.")
	componentsPathFlag := flagSet.String("components", "", "Path to the directory containing component files.")
	engineFlag := flagSet.String("engine", "html", "Template flavor. Options: 'html', 'text' or 'css'.")
	localeFlag := flagSet.String("locale", "", "BCP 47 locale of the render, e.g. 'en-US'.")
	routeFlag := flagSet.String("path", "", "Route path exposed to bs:router as $path.")
	outputFlag := flagSet.String("o", "", "Write the result to this file instead of stdout.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *templateFlag != "" {
		path = *templateFlag
	} else if *tFlag != "" {
		path = *tFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Template path determined.", "path", path, "component", *componentFlag)

	if path == "" && *componentFlag == "" {
		slog.Debug("Nothing to render, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		TemplatePath:   path,
		ComponentName:  *componentFlag,
		Static:         *staticFlag,
		ContextPath:    *contextFlag,
		ComponentsPath: *componentsPathFlag,
		Engine:         *engineFlag,
		Locale:         *localeFlag,
		RoutePath:      *routeFlag,
		OutputPath:     *outputFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
