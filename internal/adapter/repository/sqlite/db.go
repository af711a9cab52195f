// Package sqlite stores cashflows and analytics runs in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database file at path and applies the schema
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// one writer keeps WAL mode free of SQLITE_BUSY under concurrent runs
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS cashflows (
	id             INTEGER PRIMARY KEY,
	fund           TEXT NOT NULL,
	date           TEXT NOT NULL,
	cashflow_type  TEXT NOT NULL,
	local_currency TEXT NOT NULL,
	amount_local   TEXT NOT NULL,
	amount_base    TEXT NOT NULL,
	base_currency  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS cashflows_fund_date_idx ON cashflows (fund, date);

CREATE TABLE IF NOT EXISTS analytics_runs (
	id            TEXT PRIMARY KEY,
	fund          TEXT NOT NULL,
	base_currency TEXT NOT NULL,
	computed_at   TEXT NOT NULL,
	fund_irr      REAL
);

CREATE TABLE IF NOT EXISTS currency_irrs (
	run_id     TEXT NOT NULL REFERENCES analytics_runs (id) ON DELETE CASCADE,
	currency   TEXT NOT NULL,
	irr        REAL NOT NULL,
	iterations INTEGER NOT NULL,
	PRIMARY KEY (run_id, currency)
);

CREATE TABLE IF NOT EXISTS nav_points (
	run_id           TEXT NOT NULL REFERENCES analytics_runs (id) ON DELETE CASCADE,
	currency         TEXT NOT NULL,
	date             TEXT NOT NULL,
	cashflow         TEXT NOT NULL,
	pre_transaction  TEXT NOT NULL,
	post_transaction TEXT NOT NULL,
	PRIMARY KEY (run_id, currency, date)
);

CREATE TABLE IF NOT EXISTS fx_forward_trades (
	run_id            TEXT NOT NULL REFERENCES analytics_runs (id) ON DELETE CASCADE,
	id                TEXT NOT NULL,
	currency_pair     TEXT NOT NULL,
	trade_date        TEXT NOT NULL,
	delivery_date     TEXT NOT NULL,
	direction         TEXT NOT NULL,
	notional_currency TEXT NOT NULL,
	notional_amount   TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);

CREATE TABLE IF NOT EXISTS scope_failures (
	run_id TEXT NOT NULL REFERENCES analytics_runs (id) ON DELETE CASCADE,
	scope  TEXT NOT NULL,
	error  TEXT NOT NULL
);
`
