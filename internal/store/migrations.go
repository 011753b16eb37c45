package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/divvyhq/divvy/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// Accounts table: the fixed classification chart, seeded below
		`CREATE TABLE IF NOT EXISTS accounts (
			id           INTEGER PRIMARY KEY,
			name         TEXT NOT NULL,
			account_type TEXT NOT NULL CHECK (account_type IN ('Asset','Liability','Expense','Income','Equity')),
			sub_type     TEXT NOT NULL UNIQUE,
			created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// Account entities: one per (user, account), the balance-tracking unit
		`CREATE TABLE IF NOT EXISTS account_entities (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id   INTEGER NOT NULL REFERENCES users(id),
			account_id INTEGER NOT NULL REFERENCES accounts(id),
			balance    TEXT NOT NULL DEFAULT '0',
			stale      INTEGER NOT NULL DEFAULT 0,
			version    INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE(owner_id, account_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_owner ON account_entities(owner_id)`,

		// Expense catalog: hierarchical categories, parent-id edges
		`CREATE TABLE IF NOT EXISTS expense_catalog (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			parent_id  INTEGER REFERENCES expense_catalog(id),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_parent ON expense_catalog(parent_id)`,

		// Transaction logs: the immutable fact table
		`CREATE TABLE IF NOT EXISTS transaction_logs (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id               TEXT NOT NULL,
			debit_entity_id        INTEGER NOT NULL REFERENCES account_entities(id),
			credit_entity_id       INTEGER NOT NULL REFERENCES account_entities(id),
			amount                 TEXT NOT NULL,
			counterparty_entity_id INTEGER REFERENCES account_entities(id),
			catalog_id             INTEGER REFERENCES expense_catalog(id),
			note                   TEXT NOT NULL DEFAULT '',
			reverses_batch_id      TEXT NOT NULL DEFAULT '',
			created_at             TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			CHECK (debit_entity_id != credit_entity_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_batch ON transaction_logs(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_debit ON transaction_logs(debit_entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_credit ON transaction_logs(credit_entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_counterparty ON transaction_logs(counterparty_entity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_reverses ON transaction_logs(reverses_batch_id) WHERE reverses_batch_id != ''`,

		// Trigger: log rows are immutable; corrections are reversal rows
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_logs_update
		BEFORE UPDATE ON transaction_logs
		BEGIN
			SELECT RAISE(ABORT, 'transaction logs are immutable');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_logs_delete
		BEFORE DELETE ON transaction_logs
		BEGIN
			SELECT RAISE(ABORT, 'transaction logs are immutable');
		END`,

		// Trigger: the account chart is fixed after seeding
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_accounts_update
		BEFORE UPDATE ON accounts
		BEGIN
			SELECT RAISE(ABORT, 'accounts are seeded configuration and cannot change');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_accounts_delete
		BEFORE DELETE ON accounts
		BEGIN
			SELECT RAISE(ABORT, 'accounts are seeded configuration and cannot change');
		END`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %.60s: %w", stmt, err)
		}
	}

	// Seed the fixed account taxonomy with stable ids
	for _, sa := range ledger.SeedAccounts {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO accounts (id, name, account_type, sub_type) VALUES (?, ?, ?, ?)`,
			sa.ID, sa.Name, string(sa.Type), string(sa.SubType),
		)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", sa.SubType, err)
		}
	}

	return nil
}
