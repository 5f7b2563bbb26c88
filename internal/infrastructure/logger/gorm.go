package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogConfig controls what the GORM logger writes
type SQLLogConfig struct {
	// Level is one of silent, error, warn, info or debug
	Level string
	// SlowThreshold turns queries slower than this into warnings; zero disables
	SlowThreshold time.Duration
	// HideStatements drops the SQL text, which carries bound values
	HideStatements bool
}

// SQLLogger routes GORM statements into zap with request and trace ids
type SQLLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	cfg    SQLLogConfig
}

// NewSQLLogger creates a GORM logger named "gorm"
func NewSQLLogger(zapLogger *zap.Logger, cfg SQLLogConfig) *SQLLogger {
	return &SQLLogger{
		logger: zapLogger.Named("gorm"),
		level:  ParseSQLLevel(cfg.Level),
		cfg:    cfg,
	}
}

// ParseSQLLevel maps a config level to GORM's. Unknown values mean warn.
func ParseSQLLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *SQLLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *SQLLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *SQLLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface. Record-not-found is the normal
// answer of FindBy lookups and is never logged.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var log func(string, ...zap.Field)
	msg := "sql"
	switch {
	case failed && l.level >= gormlogger.Error:
		log, msg = l.logger.Error, "sql failed"
	case slow && l.level >= gormlogger.Warn:
		log, msg = l.logger.Warn, "slow sql"
	case l.level >= gormlogger.Info:
		log = l.logger.Debug
	default:
		return
	}

	statement, rows := fc()
	fields := append(Fields(ctx), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	if !l.cfg.HideStatements {
		fields = append(fields, zap.String("sql", statement))
	}
	if failed {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))
	}
	log(msg, fields...)
}

