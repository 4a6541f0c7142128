package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tuneidx",
		Usage:    "Index a music library export into a search cluster",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				logger.Error(msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		logger.Fatalf("application error: %v", err)
	}
}
