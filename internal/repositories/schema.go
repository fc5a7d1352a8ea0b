package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the tables idempotently, in dependency order.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{"rfp table", `
		CREATE TABLE IF NOT EXISTS rfp (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			raw_input TEXT NOT NULL,
			structured_json JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`},
	{"vendor table", `
		CREATE TABLE IF NOT EXISTS vendor (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`},
	{"vendor email index", `CREATE INDEX IF NOT EXISTS idx_vendor_email_lower ON vendor (lower(email));`},
	{"proposal table", `
		CREATE TABLE IF NOT EXISTS proposal (
			id SERIAL PRIMARY KEY,
			vendor_id INTEGER NOT NULL REFERENCES vendor(id),
			rfp_id INTEGER NOT NULL REFERENCES rfp(id),
			content_raw TEXT NOT NULL,
			parsed_json JSONB NOT NULL DEFAULT '{}'::jsonb,
			content_hash VARCHAR(64) NOT NULL,
			score DOUBLE PRECISION,
			recommendation TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (rfp_id, vendor_id, content_hash)
		);
	`},
	{"proposal rfp index", `CREATE INDEX IF NOT EXISTS idx_proposal_rfp_id ON proposal (rfp_id);`},
}

// EnsureSchema creates any missing tables and indexes.
// onStep is called after each statement succeeds; it may be nil.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, onStep func(name string)) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
		if onStep != nil {
			onStep(stmt.name)
		}
	}
	return nil
}

// Advisory lock keys
const (
	InboxPollLockKey int64 = 1
)

// TryAdvisoryLock takes a session-level advisory lock on a dedicated connection.
// When acquired is true the caller must call unlock, which releases the lock and the connection.
func TryAdvisoryLock(ctx context.Context, db *pgxpool.Pool, key int64) (acquired bool, unlock func(context.Context) error, err error) {
	conn, err := db.Acquire(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		conn.Release()
		return false, nil, fmt.Errorf("failed to check advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return false, nil, nil
	}

	unlock = func(ctx context.Context) error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", key); err != nil {
			return fmt.Errorf("failed to release advisory lock: %w", err)
		}
		return nil
	}
	return true, unlock, nil
}
