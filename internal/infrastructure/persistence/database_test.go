package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestNewGormConfig(t *testing.T) {
	l := logger.NewSQLLogger(zap.NewNop(), logger.SQLLogConfig{Level: "warn"})
	cfg := newGormConfig(l)

	assert.True(t, cfg.TranslateError)
	assert.True(t, cfg.SkipDefaultTransaction)
	assert.True(t, cfg.PrepareStmt)
	assert.Same(t, l, cfg.Logger)
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.Error(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_SQL(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	pool, err := db.SQL()
	require.NoError(t, err)
	assert.Same(t, mockDB, pool)
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_WithinTransaction(t *testing.T) {
	t.Run("repository calls join the transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO tickets`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tm := NewTxManager(db.DB)
		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			if err := conn(ctx, db.DB).Exec("UPDATE products SET stock = stock - 1").Error; err != nil {
				return err
			}
			return conn(ctx, db.DB).Exec("INSERT INTO tickets (id) VALUES (1)").Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		tm := NewTxManager(db.DB)
		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			if err := conn(ctx, db.DB).Exec("UPDATE products SET stock = stock - 1").Error; err != nil {
				return err
			}
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls reuse the outer transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tm := NewTxManager(db.DB)
		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return tm.WithinTransaction(ctx, func(ctx context.Context) error {
				return conn(ctx, db.DB).Exec("UPDATE products SET stock = stock + 1").Error
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
