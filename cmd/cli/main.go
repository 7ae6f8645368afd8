package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/specialistvlad/beastgo/internal/app"
	"github.com/specialistvlad/beastgo/internal/cli"
)

// main is the entrypoint for the beastgo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		failure := color.New(color.FgRed, color.Bold)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			failure.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		failure.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Rendered output goes to outW, usage text and logs go to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	beastApp := app.NewApp(errW, appConfig)
	return beastApp.Run(context.Background(), outW)
}
