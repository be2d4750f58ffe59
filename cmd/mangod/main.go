// Command mangod serves the mango farm sync API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mango-sync-backend/config"
	"mango-sync-backend/internal/db"
	"mango-sync-backend/internal/logging"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "mangod",
		Short:         "Mango farm sync backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "Path to the YAML config file")

	rootCmd.AddCommand(
		serveCommand(&configPath),
		migrateCommand(&configPath),
		seedCommand(&configPath),
	)
	return rootCmd
}

// bootstrap loads the configuration, builds the logger and opens the database.
func bootstrap(configPath string) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("driver", cfg.Database.Driver))

	gormDB, err := db.Open(&cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, gormDB, nil
}

func closeDB(gormDB *gorm.DB, logger *zap.Logger) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}
