package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

type gormLoggerAdapter struct {
	l        logger.Logger
	logLevel gormlogger.LogLevel
}

func newGormLogger(l logger.Logger) gormlogger.Interface {
	return &gormLoggerAdapter{
		l:        l.With(map[string]interface{}{logger.FieldComponent: "gorm"}),
		logLevel: gormlogger.Warn,
	}
}

func (a *gormLoggerAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLoggerAdapter{l: a.l, logLevel: level}
}

func (a *gormLoggerAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if a.logLevel >= gormlogger.Info {
		a.l.Info(ctx, "%s", fmt.Sprintf(msg, data...))
	}
}

func (a *gormLoggerAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if a.logLevel >= gormlogger.Warn {
		a.l.Warn(ctx, "%s", fmt.Sprintf(msg, data...))
	}
}

func (a *gormLoggerAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if a.logLevel >= gormlogger.Error {
		a.l.Error(ctx, "%s", fmt.Sprintf(msg, data...))
	}
}

func (a *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.l.Error(ctx, "Query error: %v [%s] rows=%d sql=%s", err, elapsed, rows, sql)
	case elapsed > slowQueryThreshold:
		a.l.Warn(ctx, "Slow query [%s] rows=%d sql=%s", elapsed, rows, sql)
	case a.logLevel >= gormlogger.Info:
		a.l.Debug(ctx, "Query [%s] rows=%d sql=%s", elapsed, rows, sql)
	}
}
