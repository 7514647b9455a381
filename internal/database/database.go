package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"customerbooking/internal/config"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB is the SQLite-backed entity store for customers, brands, bookings and the event outbox.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

func NewDB(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: cfg.Path, logger: logger}
	if err := db.createTables(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("database initialized")
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// dsn enables foreign keys on every pooled connection and reads timestamps back in UTC.
func dsn(cfg config.DatabaseConfig) string {
	busy := cfg.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_loc=UTC", cfg.Path, busy)
}

func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            age INTEGER NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS brands (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            address TEXT NOT NULL,
            short_code TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            start_date DATE NOT NULL,
            end_date DATE NOT NULL,
            customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
            brand_id INTEGER REFERENCES brands(id) ON DELETE RESTRICT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS outbox (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            event_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL DEFAULT 0,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_id ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_brand_id ON bookings(brand_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
