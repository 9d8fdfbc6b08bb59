package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations is an ordered list of statement groups; the version is the
// 1-based index. The SQL is kept to the subset postgres and sqlite share.
var migrations = [][]string{
	// 1: leads, clients, calls
	{
		`CREATE TABLE leads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL,
			address TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			assigned_to TEXT NOT NULL DEFAULT '',
			crm_type TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_contact TEXT NOT NULL,
			follow_up TEXT,
			notes TEXT NOT NULL DEFAULT '[]',
			comments TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX idx_leads_crm_created ON leads(crm_type, created_at)`,
		`CREATE INDEX idx_leads_follow_up ON leads(follow_up)`,

		`CREATE TABLE clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL,
			address TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			assigned_to TEXT NOT NULL DEFAULT '',
			crm_type TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_contact TEXT NOT NULL,
			follow_up TEXT,
			notes TEXT NOT NULL DEFAULT '[]',
			comments TEXT NOT NULL DEFAULT '[]',
			company TEXT,
			value DOUBLE PRECISION NOT NULL DEFAULT 0,
			lead_id TEXT NOT NULL UNIQUE
		)`,
		`CREATE INDEX idx_clients_crm_created ON clients(crm_type, created_at)`,

		`CREATE TABLE calls (
			id TEXT PRIMARY KEY,
			lead_id TEXT,
			client_id TEXT,
			employee_id TEXT NOT NULL,
			crm_type TEXT NOT NULL,
			date TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_calls_crm_date ON calls(crm_type, date)`,
	},
	// 2: optimistic-lock counter on the mutable tables
	{
		`ALTER TABLE leads ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE clients ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
	},
}

// Migrate runs pending migrations, each in its own transaction, tracked by
// version in schema_migrations.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		if err := db.QueryRowContext(ctx, d.Rebind("SELECT COUNT(*) FROM schema_migrations WHERE version = ?"), version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}

		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}

		if _, err := tx.ExecContext(ctx, d.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"), version, formatTime(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 when none.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
