package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vovarama1992/edushare/internal/config"
	"github.com/Vovarama1992/edushare/internal/infra"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded schema migrations",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert lookup tables (levels, streams, subjects...)",
	Long: `Upsert the lookup tables from a YAML file.

Rows are upserted by code, so re-running a seed is safe.`,
	RunE: runSeed,
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Database.URL == "" {
		return "", errors.New("DATABASE_URL is not set")
	}
	return cfg.Database.URL, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dsn, err := databaseURL()
	if err != nil {
		return err
	}
	zl := newLogger()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	pool, err := infra.NewPgxPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := infra.Migrate(ctx, pool)
	if err != nil {
		return err
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "migrations applied",
		Fields:  map[string]any{"applied": applied, "count": len(applied)},
	})
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	dsn, err := databaseURL()
	if err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("file")

	lookups, err := infra.LoadSeed(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	pool, err := infra.NewPgxPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := infra.NewPostgresLookupRepo(pool).Upsert(ctx, lookups); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	newLogger().Log(logger.LogEntry{
		Level:   "info",
		Message: "lookups seeded",
		Fields: map[string]any{
			"levels":     len(lookups.Levels),
			"streams":    len(lookups.Streams),
			"subjects":   len(lookups.Subjects),
			"languages":  len(lookups.Languages),
			"categories": len(lookups.Categories),
		},
	})
	return nil
}
