package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/config"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database is the application's PostgreSQL handle
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the pool described by cfg and checks it with a ping.
// Statements go to zap at cfg.LogLevel; anything slower than slowQuery is
// logged as a warning.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, slowQuery time.Duration) (*Database, error) {
	sqlLogger := logger.NewSQLLogger(zapLogger, logger.SQLLogConfig{Level: cfg.LogLevel, SlowThreshold: slowQuery})

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), newGormConfig(sqlLogger))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := &Database{DB: gdb}

	pool, err := db.SQL()
	if err != nil {
		return nil, err
	}
	configurePool(pool, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// newGormConfig returns the GORM settings every connection shares.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey, which
// ticket numbering relies on.
func newGormConfig(l *logger.SQLLogger) *gorm.Config {
	return &gorm.Config{
		Logger:                 l,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}
}

func configurePool(pool *sql.DB, cfg *config.DatabaseConfig) {
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL returns the pool under GORM, for migrations
func (d *Database) SQL() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return pool, nil
}

// Ping reports whether the database answers; it backs the health endpoint
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close closes the pool
func (d *Database) Close() error {
	pool, err := d.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}
