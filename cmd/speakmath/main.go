// Command speakmath converts mathematical notation into speakable text.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cachemem "github.com/custodia-labs/speakmath/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/speakmath/internal/adapters/driven/config/file"
	"github.com/custodia-labs/speakmath/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/speakmath/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/speakmath/internal/adapters/driving/cli"
	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
	"github.com/custodia-labs/speakmath/internal/core/services"
	"github.com/custodia-labs/speakmath/internal/logger"
)

// version is set via -ldflags "-X main.version=...".
var version = "dev"

// batchConcurrency bounds parallel conversions in batch mode.
const batchConcurrency = 8

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore(os.Getenv("SPEAKMATH_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "speakmath: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		// Keep the settings commands usable so the file can be repaired.
		logger.Warn("invalid settings in %s, using defaults: %v", configStore.Path(), err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	conversion, err := newConversionService(*settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "speakmath: %v\n", err)
		return err
	}

	tokenStore, closeStore := openTokenStore()
	defer closeStore()
	tokens := services.NewTokenService(tokenStore)
	conversion.SetTokenService(tokens)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Conversion: conversion,
		Batch:      services.NewBatchService(conversion, batchConcurrency),
		Tokens:     tokens,
		Settings:   settingsService,
	})
	cli.SetTUIConfig(&cli.TUIConfig{
		ConversionService:   conversion,
		TokenService:        tokens,
		SettingsService:     settingsService,
		ResultActionService: services.NewResultActionService(),
	})

	return cli.Execute(ctx)
}

// newConversionService builds the conversion service. A rule pack that
// fails to load is skipped with a warning so the settings commands can
// still repair the path.
func newConversionService(settings domain.Settings) (*services.ConversionService, error) {
	cache := cachemem.New(settings.Cache.Capacity)
	conversion, err := services.NewConversionService(settings, cache)
	if err == nil || settings.RulePack == "" {
		return conversion, err
	}
	logger.Warn("rule pack %s not loaded, using built-in rules: %v", settings.RulePack, err)
	settings.RulePack = ""
	return services.NewConversionService(settings, cache)
}

// openTokenStore opens the persistent token log, falling back to an
// in-memory log when the database cannot be opened.
func openTokenStore() (driven.TokenStore, func()) {
	if os.Getenv("SPEAKMATH_NO_STORE") != "" {
		return memory.NewTokenStore(), func() {}
	}

	store, err := sqlite.NewStore(os.Getenv("SPEAKMATH_DATA_DIR"))
	if err != nil {
		logger.Warn("token log unavailable, keeping tokens in memory: %v", err)
		return memory.NewTokenStore(), func() {}
	}
	logger.Debug("token log: %s", store.Path())

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing token log: %v", err)
		}
	}
}
