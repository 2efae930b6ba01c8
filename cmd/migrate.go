package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovora/search-service/internal/domain"
	"github.com/rovora/search-service/pkg/database"
	pkglog "github.com/rovora/search-service/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the read-model tables in a development database.",
	Long: `Auto-migrates the catalog tables the SQL search backend reads.
Production schemas are owned by the catalog services; use this only for
local databases and fixtures.`,
	RunE: runMigrate,
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := pkglog.L()

	db, err := database.New(cfg.Database.ToDatabaseConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")
	return nil
}
