// Command fundfetch downloads the yearly NIH funding workbooks from
// brimr.org and files them into category directories.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/brimr-tools/fundfetch/internal/adapters/driven/browser/playwright"
	"github.com/brimr-tools/fundfetch/internal/adapters/driven/config/file"
	"github.com/brimr-tools/fundfetch/internal/adapters/driven/storage/sqlite"
	"github.com/brimr-tools/fundfetch/internal/adapters/driving/cli"
	"github.com/brimr-tools/fundfetch/internal/core/ports/driven"
	"github.com/brimr-tools/fundfetch/internal/core/services"
	"github.com/brimr-tools/fundfetch/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing run history: %v", err)
		}
	}()
	runStore := store.RunStore()

	factory := playwright.NewFactory(configDuration(configStore, driven.ConfigPageTimeoutSeconds))

	fetchService := services.NewFetchService(factory, runStore, services.FetchOptions{
		DownloadTimeout: configDuration(configStore, driven.ConfigDownloadTimeoutSeconds),
	})
	defer fetchService.Close()

	cli.SetServices(cli.Services{
		Fetcher:     fetchService,
		Prober:      services.NewProber(configStore),
		RunStore:    runStore,
		ConfigStore: configStore,
	})

	return cli.Execute()
}

// configDuration reads a timeout in seconds from config; zero means
// "use the component default".
func configDuration(store driven.ConfigStore, key string) time.Duration {
	return time.Duration(store.GetInt(key)) * time.Second
}
