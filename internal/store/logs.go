package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

// NextBatchID generates a fresh batch identifier. UUIDv7 is time-ordered,
// so batch ids sort by creation time.
func (s *Store) NextBatchID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BalanceUpdate is one entity's new cached balance, guarded by the version
// the caller read it at.
type BalanceUpdate struct {
	EntityID   int64
	NewBalance decimal.Decimal
	Version    int64
}

// CommitBatch persists all log rows of a batch and applies the accumulated
// balance updates as one atomic transaction. Updates must arrive in
// ascending entity id order. If any entity's version moved since the caller
// read it, the whole transaction rolls back with ErrConflict; the batch is
// safe to retry from validation. If reverses is non-empty the existence of a
// prior reversal is re-checked inside the transaction, closing the race
// between two concurrent reversal requests.
func (s *Store) CommitBatch(ctx context.Context, batchID string, logs []ledger.Log, updates []BalanceUpdate, reverses string) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if reverses != "" {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transaction_logs WHERE reverses_batch_id = ?`, reverses).Scan(&n)
		if err != nil {
			return fmt.Errorf("check reversal: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: batch %s", ledger.ErrAlreadyReversed, reverses)
		}
	}

	for i, lg := range logs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transaction_logs
				(batch_id, debit_entity_id, credit_entity_id, amount, counterparty_entity_id, catalog_id, note, reverses_batch_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, lg.DebitEntityID, lg.CreditEntityID, lg.Amount.String(),
			lg.CounterpartyEntityID, lg.CatalogID, lg.Note, reverses,
		)
		if err != nil {
			return fmt.Errorf("insert log %d: %w", i, err)
		}
	}

	for _, u := range updates {
		res, err := tx.ExecContext(ctx,
			`UPDATE account_entities SET balance = ?, version = version + 1
			WHERE id = ? AND version = ?`,
			u.NewBalance.String(), u.EntityID, u.Version,
		)
		if err != nil {
			return fmt.Errorf("update balance %d: %w", u.EntityID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: entity %d", ledger.ErrConflict, u.EntityID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const logColumns = `id, batch_id, debit_entity_id, credit_entity_id, amount, counterparty_entity_id, catalog_id, note, reverses_batch_id, created_at`

// LogsByBatch returns every line committed under a batch id, in insert order.
func (s *Store) LogsByBatch(ctx context.Context, batchID string) ([]ledger.Log, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+logColumns+` FROM transaction_logs WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("logs by batch: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// LogsForEntity returns recent lines where the entity was either the debit
// or the credit party, newest first.
func (s *Store) LogsForEntity(ctx context.Context, entityID int64, limit int) ([]ledger.Log, error) {
	query := `SELECT ` + logColumns + ` FROM transaction_logs
		WHERE debit_entity_id = ? OR credit_entity_id = ?
		ORDER BY id DESC`
	args := []any{entityID, entityID}
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("logs for entity: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// HasReversal reports whether a committed batch already negates batchID.
func (s *Store) HasReversal(ctx context.Context, batchID string) (bool, error) {
	var n int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transaction_logs WHERE reverses_batch_id = ?`, batchID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has reversal: %w", err)
	}
	return n > 0, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ReplayBalance recomputes an entity's balance from scratch: the sum of
// amounts where it is the debit side minus the sum where it is the credit
// side. Amounts are summed as decimals in Go because SQLite would coerce the TEXT
// column through binary floats.
func (s *Store) ReplayBalance(ctx context.Context, entityID int64) (decimal.Decimal, error) {
	return replayBalance(ctx, s.reader, entityID)
}

func replayBalance(ctx context.Context, q querier, entityID int64) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT amount, debit_entity_id = ? FROM transaction_logs
		WHERE debit_entity_id = ? OR credit_entity_id = ?`,
		entityID, entityID, entityID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("replay balance: %w", err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var amountStr string
		var isDebit bool
		if err := rows.Scan(&amountStr, &isDebit); err != nil {
			return decimal.Zero, fmt.Errorf("scan replay row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", amountStr, err)
		}
		if isDebit {
			balance = balance.Add(amount)
		} else {
			balance = balance.Sub(amount)
		}
	}
	return balance, rows.Err()
}

// NetPositionAmount sums the signed amounts of all lines where entityID is
// one leg and counterpartyID is the declared counterparty.
func (s *Store) NetPositionAmount(ctx context.Context, entityID, counterpartyID int64) (decimal.Decimal, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT amount, debit_entity_id = ? FROM transaction_logs
		WHERE counterparty_entity_id = ? AND (debit_entity_id = ? OR credit_entity_id = ?)`,
		entityID, counterpartyID, entityID, entityID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("net position: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		var isDebit bool
		if err := rows.Scan(&amountStr, &isDebit); err != nil {
			return decimal.Zero, fmt.Errorf("scan position row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", amountStr, err)
		}
		if isDebit {
			total = total.Add(amount)
		} else {
			total = total.Sub(amount)
		}
	}
	return total, rows.Err()
}

func scanLogs(rows *sql.Rows) ([]ledger.Log, error) {
	var logs []ledger.Log
	for rows.Next() {
		var lg ledger.Log
		var amountStr, createdAt string
		var counterparty, catalog sql.NullInt64
		if err := rows.Scan(&lg.ID, &lg.BatchID, &lg.DebitEntityID, &lg.CreditEntityID,
			&amountStr, &counterparty, &catalog, &lg.Note, &lg.ReversesBatchID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		var err error
		lg.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amountStr, err)
		}
		if counterparty.Valid {
			v := counterparty.Int64
			lg.CounterpartyEntityID = &v
		}
		if catalog.Valid {
			v := catalog.Int64
			lg.CatalogID = &v
		}
		lg.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		logs = append(logs, lg)
	}
	return logs, rows.Err()
}
