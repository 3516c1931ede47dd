package main

import (
	"context"
	"errors"
	"os"

	"github.com/podbridge/podbridge/internal/backfill"
	"github.com/podbridge/podbridge/internal/services"
	"github.com/podbridge/podbridge/internal/shared"
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

	apiService := services.NewAPIService(config.API.BaseURL, config.API.Token, nil)

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    apiService,
		Media:  apiService,
		Opener: backfill.NewStreamOpener(apiService, nil),
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "podbridge",
		Usage:    "Turn YouTube channels into podcast feeds",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
