// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/mmynk/splitcheck/internal/storage"
	"github.com/mmynk/splitcheck/internal/storage/sqlstore"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	*sqlstore.Store
}

// New connects to databaseURL, verifies the connection and runs migrations.
func New(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	store, err := NewFromDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an already open database and runs migrations.
func NewFromDB(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{Store: sqlstore.New(db, sqlstore.Postgres)}, nil
}
