package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestSQLLogger_Trace(t *testing.T) {
	t.Run("failures carry request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "warn"})

		ctx := WithRequestID(context.Background(), "req-7")
		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), errors.New("boom"))

		entry := findEntry(t, recorded, "sql failed")
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "req-7", entry.ContextMap()["request_id"])
		assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
		assert.Equal(t, "boom", entry.ContextMap()["error"])
	})

	t.Run("record not found is quiet", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "warn"})

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "warn", SlowThreshold: time.Millisecond})

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT pg_sleep(1)", 1), nil)
		entry := findEntry(t, recorded, "slow sql")
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Contains(t, entry.ContextMap(), "threshold")
	})

	t.Run("fast query below info is dropped", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "warn", SlowThreshold: time.Hour})

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Zero(t, recorded.Len())
	})

	t.Run("statements can be hidden", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "debug", HideStatements: true})

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT secret", 1), nil)
		entry := findEntry(t, recorded, "sql")
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.NotContains(t, entry.ContextMap(), "sql")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewSQLLogger(zap.New(core), SQLLogConfig{Level: "info"}).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestParseSQLLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":   gormlogger.Silent,
		"ERROR":    gormlogger.Error,
		"warn":     gormlogger.Warn,
		"info":     gormlogger.Info,
		"debug":    gormlogger.Info,
		"whatever": gormlogger.Warn,
		"":         gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSQLLevel(in), in)
	}
}
