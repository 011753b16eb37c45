package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/divvyhq/divvy/internal/ledger"
)

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, name, account_type, sub_type, created_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.SubType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccount(row *sql.Row) (*ledger.Account, error) {
	var a ledger.Account
	var createdAt string
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.SubType, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &a, nil
}
