package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mango-sync-backend/config"
	"mango-sync-backend/internal/logging"
	"mango-sync-backend/internal/model"
)

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&model.Farmer{},
		&model.Farm{},
		&model.Note{},
		&model.Season{},
		&model.PushSubscription{},
	}
}

// Dialector picks the GORM driver for the configured database.
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the database and configures the pool. It does not migrate.
func Open(cfg *config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	logger = logging.OrNop(logger)
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logging.NewGormLogger(logger.Named("gorm"), time.Duration(cfg.SlowQueryMillis)*time.Millisecond),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers, and an in-memory database lives only as
		// long as its single connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	logger.Info("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	logger.Info("database migrations complete")
	return nil
}

// SeasonSeeder is the part of the store that can write the season catalog.
type SeasonSeeder interface {
	ListSeasons(ctx context.Context) ([]model.Season, error)
	UpsertSeasons(ctx context.Context, seasons []model.Season) error
}

// Seed writes seasons when force is set or the table is empty. It reports
// whether anything was written.
func Seed(ctx context.Context, s SeasonSeeder, seasons []model.Season, force bool, logger *zap.Logger) (bool, error) {
	logger = logging.OrNop(logger)
	if !force {
		existing, err := s.ListSeasons(ctx)
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			logger.Debug("season table already populated", zap.Int("seasons", len(existing)))
			return false, nil
		}
	}
	if err := s.UpsertSeasons(ctx, seasons); err != nil {
		return false, err
	}
	logger.Info("seeded season catalog", zap.Int("seasons", len(seasons)))
	return true, nil
}
