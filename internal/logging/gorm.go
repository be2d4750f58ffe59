package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM's log output into zap.
// Queries are logged at DEBUG; slow queries and query errors at WARN.
type GormLogger struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewGormLogger creates a GORM logger. A zero slowThreshold disables slow query warnings.
func NewGormLogger(logger *zap.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		logger:        OrNop(logger).WithOptions(zap.AddCallerSkip(3)),
		slowThreshold: slowThreshold,
	}
}

// LogMode returns the adapter itself; the zap level decides what is written.
func (g *GormLogger) LogMode(_ gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	g.logger.Debug(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	g.logger.Warn(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	g.logger.Error(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.logger.Warn("query error",
			zap.String("sql", sql),
			zap.Int64("rows_affected", rows),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		sql, rows := fc()
		g.logger.Warn("slow query",
			zap.String("sql", sql),
			zap.Int64("rows_affected", rows),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", g.slowThreshold))
	default:
		if !g.logger.Core().Enabled(zap.DebugLevel) {
			return
		}
		sql, rows := fc()
		g.logger.Debug("sql query",
			zap.String("sql", sql),
			zap.Int64("rows_affected", rows),
			zap.Duration("elapsed", elapsed))
	}
}
