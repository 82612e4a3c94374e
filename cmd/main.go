package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/mealplan/internal/repositories"
	"github.com/desertthunder/mealplan/internal/services"
	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	session := services.NewMemorySession(nil)
	if tokenPath, err := config.ResolveTokenPath(); err != nil {
		logger.Warn("could not resolve token path, session will not persist", "error", err)
	} else if loaded, err := services.LoadSession(tokenPath); err != nil {
		logger.Warn("failed to load session, continuing unauthenticated", "error", err)
	} else {
		session = loaded
	}

	var store *repositories.UserRecipeRepository
	if db, err := shared.NewDatabase(config.Database.Path); err != nil {
		logger.Warn("recipe database unavailable", "path", config.Database.Path, "error", err)
	} else {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			logger.Warn("failed to run migrations, recipe database disabled", "error", err)
		} else {
			store = repositories.NewUserRecipeRepository(db)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Session:    session,
		Store:      store,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "mealplan",
		Usage:    "Discover recipes from the catalog and your own collection",
		Version:  "0.1.0",
		Commands: runner.register(),
		// Ingredients like "salt, to taste" must stay one value.
		DisableSliceFlagSeparator: true,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
