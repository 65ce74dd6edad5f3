package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/backend-storefront/internal/app"
	"github.com/noah-isme/backend-storefront/internal/config"
	"github.com/noah-isme/backend-storefront/internal/obs"
)

// migrate applies the embedded schema: `migrate up`, `migrate down -steps 1`, `migrate version`.
func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "migrate").Logger()

	m, err := app.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init migrator")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrator")
		}
	}()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}
	switch cmd {
	case "up":
		err = app.MigrateUp(m)
	case "down":
		if *steps < 1 {
			logger.Fatal().Int("steps", *steps).Msg("steps must be positive")
		}
		err = m.Steps(-*steps)
		if errors.Is(err, migrate.ErrNoChange) {
			err = nil
		}
	case "version":
	default:
		logger.Fatal().Str("command", cmd).Msg("unknown command; use up, down or version")
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Str("command", cmd).Msg("no migrations applied")
	case err != nil:
		logger.Fatal().Err(err).Msg("read schema version")
	default:
		logger.Info().Str("command", cmd).Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	}
}
