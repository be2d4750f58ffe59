package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mango-sync-backend/internal/db"
	"mango-sync-backend/internal/season"
	"mango-sync-backend/internal/store"
)

func migrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, gormDB, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(gormDB, logger)

			return db.Migrate(gormDB, logger)
		},
	}
}

func seedCommand(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the 12-month mango season advisory",
		Long:  "Writes the built-in season advisory when the season table is empty, or always with --force.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, gormDB, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer closeDB(gormDB, logger)

			if err := db.Migrate(gormDB, logger); err != nil {
				return err
			}
			written, err := db.Seed(cmd.Context(), store.NewGormStore(gormDB), season.DefaultSeasons(), force, logger)
			if err != nil {
				return err
			}
			logger.Info("season seed finished", zap.Bool("written", written))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing season rows")
	return cmd
}
