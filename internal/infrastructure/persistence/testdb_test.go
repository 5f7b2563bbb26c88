package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the application schema.
// TranslateError is enabled so unique violations map to gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			category_id TEXT,
			unit TEXT NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			min_stock INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			image_key TEXT,
			qr_code TEXT NOT NULL UNIQUE,
			nutrition_form TEXT,
			energy_kcal DECIMAL(10,2),
			sodium_mg DECIMAL(10,2),
			sugar_g DECIMAL(10,2),
			saturated_fat_g DECIMAL(10,2),
			trans_fat_g DECIMAL(10,2),
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE tickets (
			id TEXT PRIMARY KEY,
			ticket_number TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'issued',
			item_count INTEGER NOT NULL,
			total DECIMAL(12,2) NOT NULL,
			budget_amount DECIMAL(12,2),
			budget_status TEXT NOT NULL DEFAULT 'none',
			budget_percentage_used DECIMAL(8,2),
			budget_remaining DECIMAL(12,2),
			notes TEXT,
			issued_at DATETIME NOT NULL,
			cancelled_at DATETIME,
			cancel_reason TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE ticket_items (
			id TEXT PRIMARY KEY,
			ticket_id TEXT NOT NULL REFERENCES tickets(id),
			line_no INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			product_code TEXT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL,
			quantity INTEGER NOT NULL,
			line_total DECIMAL(12,2) NOT NULL
		)`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			display_name TEXT,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'cashier',
			status TEXT NOT NULL DEFAULT 'active',
			failed_attempts INTEGER NOT NULL DEFAULT 0,
			locked_until DATETIME,
			last_login_at DATETIME,
			last_login_ip TEXT,
			password_changed_at DATETIME,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}
