package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

const entityColumns = `id, owner_id, account_id, balance, stale, version, created_at`

// EnsureEntity returns the user's entity for the given sub-type, creating it
// lazily on first use. At most one entity exists per (user, account). The
// account id comes straight from the fixed chart; its stable ids make a
// database lookup unnecessary.
func (s *Store) EnsureEntity(ctx context.Context, ownerID int64, st ledger.SubType) (*ledger.AccountEntity, error) {
	chart := ledger.LookupSeedAccount(st)
	if chart == nil {
		return nil, fmt.Errorf("%w: sub-type %s", ledger.ErrAccountNotFound, st)
	}

	ent, err := s.GetEntityByOwnerAccount(ctx, ownerID, chart.ID)
	if err == nil {
		return ent, nil
	}
	if err != ledger.ErrEntityNotFound {
		return nil, err
	}

	// Verify the owner exists before lazily creating
	if _, err := s.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	// INSERT OR IGNORE keeps the (owner, account) uniqueness under
	// concurrent first use; the follow-up read returns whichever row won.
	_, err = s.writer.ExecContext(ctx,
		`INSERT OR IGNORE INTO account_entities (owner_id, account_id) VALUES (?, ?)`,
		ownerID, chart.ID)
	if err != nil {
		return nil, fmt.Errorf("insert entity: %w", err)
	}

	return s.GetEntityByOwnerAccount(ctx, ownerID, chart.ID)
}

func (s *Store) GetEntity(ctx context.Context, id int64) (*ledger.AccountEntity, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM account_entities WHERE id = ?`, id)
	return scanEntity(row)
}

func (s *Store) GetEntityByOwnerAccount(ctx context.Context, ownerID, accountID int64) (*ledger.AccountEntity, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM account_entities WHERE owner_id = ? AND account_id = ?`,
		ownerID, accountID)
	return scanEntity(row)
}

// ListEntitiesForUser returns the user's entities joined with their account
// classification, ordered by account id.
func (s *Store) ListEntitiesForUser(ctx context.Context, ownerID int64) ([]ledger.EntityInfo, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT e.id, e.owner_id, e.account_id, e.balance, e.stale, e.version, e.created_at,
			a.name, a.account_type, a.sub_type
		FROM account_entities e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.owner_id = ?
		ORDER BY e.account_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var infos []ledger.EntityInfo
	for rows.Next() {
		var info ledger.EntityInfo
		var balance, createdAt string
		var stale int
		if err := rows.Scan(&info.ID, &info.OwnerID, &info.AccountID, &balance, &stale, &info.Version,
			&createdAt, &info.AccountName, &info.AccountType, &info.SubType); err != nil {
			return nil, fmt.Errorf("scan entity info: %w", err)
		}
		info.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", balance, err)
		}
		info.Stale = stale == 1
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// EntityAccounts resolves a set of entity ids to their account
// classifications. Missing ids are simply absent from the result; the
// validator turns the gap into an unknown-entity violation.
func (s *Store) EntityAccounts(ctx context.Context, ids []int64) (map[int64]ledger.Account, error) {
	out := make(map[int64]ledger.Account, len(ids))
	for _, id := range ids {
		row := s.reader.QueryRowContext(ctx,
			`SELECT a.id, a.name, a.account_type, a.sub_type, a.created_at
			FROM account_entities e
			JOIN accounts a ON a.id = e.account_id
			WHERE e.id = ?`, id)
		acct, err := scanAccount(row)
		if err == ledger.ErrAccountNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = *acct
	}
	return out, nil
}

// MarkStale flags an entity's cached balance as untrusted; queries fall back
// to replay until RepairBalance rewrites the cache.
func (s *Store) MarkStale(ctx context.Context, id int64) error {
	res, err := s.writer.ExecContext(ctx,
		`UPDATE account_entities SET stale = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark stale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrEntityNotFound
	}
	return nil
}

// RepairBalance rewrites the cached balance from a log replay and clears the
// stale flag. The replay and the write share one transaction on the writer
// connection so no commit can slip between them.
func (s *Store) RepairBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	balance, err := replayBalance(ctx, tx, id)
	if err != nil {
		return decimal.Zero, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE account_entities SET balance = ?, stale = 0, version = version + 1 WHERE id = ?`,
		balance.String(), id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repair balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return decimal.Zero, err
	}
	if n == 0 {
		return decimal.Zero, ledger.ErrEntityNotFound
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	return balance, nil
}

func scanEntity(row *sql.Row) (*ledger.AccountEntity, error) {
	var e ledger.AccountEntity
	var balance, createdAt string
	var stale int
	err := row.Scan(&e.ID, &e.OwnerID, &e.AccountID, &balance, &stale, &e.Version, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entity: %w", err)
	}
	e.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	e.Stale = stale == 1
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &e, nil
}
