package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/hiertask/internal/app"
	"github.com/vk/hiertask/internal/cli"
)

// main is the entrypoint for the hiertask application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// Once INPUT is known the exit code is always 0; the outcome, including
	// a rejected configuration, is reported on stdout only.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		var cfgErr *cli.ConfigError
		if errors.As(err, &cfgErr) {
			app.Reject(outW, cfgErr.Err)
			return nil
		}
		return err
	}
	if shouldExit {
		return nil
	}

	app.NewApp(outW, errW, appConfig).Run(context.Background())
	return nil
}
