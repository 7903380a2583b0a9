// Command typetide styles text as you type: every word resolves to a font
// family, weight, style and colour through a vetted-cache-inference
// pipeline, and the matching font assets load in the background.
package main

import (
	"fmt"
	"os"

	catalogfile "github.com/typetide/typetide/internal/adapters/driven/catalog/file"
	configfile "github.com/typetide/typetide/internal/adapters/driven/config/file"
	"github.com/typetide/typetide/internal/adapters/driven/fontdelivery/google"
	"github.com/typetide/typetide/internal/adapters/driven/inference"
	"github.com/typetide/typetide/internal/adapters/driven/storage/memory"
	"github.com/typetide/typetide/internal/adapters/driven/storage/sqlite"
	vettedfile "github.com/typetide/typetide/internal/adapters/driven/vetted/file"
	"github.com/typetide/typetide/internal/adapters/driving/cli"
	"github.com/typetide/typetide/internal/core/ports/driven"
	"github.com/typetide/typetide/internal/core/services"
	"github.com/typetide/typetide/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}

	cfg, err := configStore.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	catalog, err := catalogfile.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var vetted driven.VettedStore
	if cfg.VettedPath != "" {
		store, err := vettedfile.NewStore(cfg.VettedPath, true)
		if err != nil {
			logger.Warn("vetted store unavailable, skipping tier: %v", err)
		} else {
			vetted = store
			defer store.Close() //nolint:errcheck // Shutdown path
		}
	}

	var cache driven.CacheStore
	if sqliteCache, err := sqlite.NewCacheStore(cfg.DataDir); err != nil {
		logger.Warn("persistent cache unavailable, using in-memory cache: %v", err)
		cache = memory.NewCacheStore()
	} else {
		cache = sqliteCache
	}
	defer cache.Close() //nolint:errcheck // Shutdown path

	var inf driven.VariantInference
	if svc, err := inference.CreateService(&cfg.Inference); err != nil {
		logger.Warn("inference unavailable, vetted and cache tiers only: %v", err)
	} else if svc != nil {
		inf = svc
		defer svc.Close() //nolint:errcheck // Shutdown path
	}

	resolver := services.NewTieredResolver(vetted, cache, inf, catalog, cfg.Resolver)
	phrases := services.NewPhraseDetector(cache, inf)
	loader := services.NewFontLoader(google.NewDelivery(google.Config{}), cfg.Loader)
	defer loader.Close() //nolint:errcheck // Shutdown path

	orchestrator := services.NewOrchestrator(
		resolver, phrases, loader, memory.NewCacheStore(), cfg.Orchestrator,
	)
	defer orchestrator.Close() //nolint:errcheck // Shutdown path

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Resolver: resolver,
		Phrases:  phrases,
		Input:    orchestrator,
		Cache:    cache,
		Config:   configStore,
		Catalog:  catalog,
	})

	logger.Debug("typetide %s starting, config at %s", version, configStore.Path())

	return cli.Execute()
}
