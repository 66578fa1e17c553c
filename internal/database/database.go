// Package database centralises sqlx connection helpers.  The driver is
// lib/pq; the subscriptions table needs Postgres types (uuid, timestamptz).
//
// Public entry points:
//
//	Open(ctx, dsn, opts)      – pool + Ping, fails fast during bootstrap.
//	OpenLazy(dsn, opts)       – pool only; first query dials.
//	Migrate(ctx, db)          – applies schema.sql (idempotent).
//
// Callers should Close() the returned *sqlx.DB when no longer needed.  DSNs
// arrive as secret.String and are exposed only when handed to the driver.
package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/yanizio/newsletter/internal/secret"
)

const driverName = "postgres"

//go:embed schema.sql
var schema string

// Options tunes the pool.  Zero values fall back to DefaultOptions.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration // bounds the initial Ping in Open
}

// DefaultOptions suits a single small service process.
var DefaultOptions = Options{
	MaxOpenConns:    15,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
	ConnectTimeout:  2 * time.Second,
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns == 0 {
		o.MaxOpenConns = DefaultOptions.MaxOpenConns
	}
	if o.MaxIdleConns == 0 {
		o.MaxIdleConns = DefaultOptions.MaxIdleConns
	}
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = DefaultOptions.ConnMaxLifetime
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = DefaultOptions.ConnectTimeout
	}
	return o
}

// Open returns a pooled *sqlx.DB after a successful Ping.
func Open(ctx context.Context, dsn secret.String, opts Options) (*sqlx.DB, error) {
	db, err := OpenLazy(dsn, opts)
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// OpenLazy configures the pool without dialing.  The service can start and
// answer health checks while Postgres is still coming up.
func OpenLazy(dsn secret.String, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn.Expose())
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	Configure(db, opts)
	return db, nil
}

// Configure applies pool limits to db.
func Configure(db *sqlx.DB, opts Options) {
	opts = opts.withDefaults()
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
}

// Migrate creates the subscriptions table if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
