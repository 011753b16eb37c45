package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

// EntityBalance returns the entity's signed balance. The cached value is
// served unless it is flagged stale or the caller forces a recompute, in
// which case the balance is replayed from the transaction log. The two must
// always agree: the cache is only ever written by a committed batch or a
// repair.
func (e *Engine) EntityBalance(ctx context.Context, entityID int64, recompute bool) (decimal.Decimal, error) {
	ent, err := e.store.GetEntity(ctx, entityID)
	if err != nil {
		return decimal.Zero, err
	}
	if !recompute && !ent.Stale {
		return ent.Balance, nil
	}
	return e.store.ReplayBalance(ctx, entityID)
}

// RepairBalance replays an entity's log and rewrites the cache, clearing the
// stale flag.
func (e *Engine) RepairBalance(ctx context.Context, entityID int64) (decimal.Decimal, error) {
	if _, err := e.store.GetEntity(ctx, entityID); err != nil {
		return decimal.Zero, err
	}
	return e.store.RepairBalance(ctx, entityID)
}

// NetPosition computes the outstanding amount between exactly one pair of
// debt entities: the signed sum of lines where entityID is a leg and
// counterpartyID is the declared counterparty. Positive means entityID holds
// a net claim recorded against that counterparty. Both entities must belong
// to a debt-tracking sub-type (AR, AP, PE, UR); a position against a cash or
// expense entity is not a meaningful question.
func (e *Engine) NetPosition(ctx context.Context, entityID, counterpartyID int64) (*ledger.NetPosition, error) {
	accounts, err := e.store.EntityAccounts(ctx, []int64{entityID, counterpartyID})
	if err != nil {
		return nil, err
	}
	for _, id := range []int64{entityID, counterpartyID} {
		acct, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ledger.ErrEntityNotFound, id)
		}
		if !ledger.DebtTracking(acct.SubType) {
			return nil, fmt.Errorf("%w: entity %d is %s", ledger.ErrNotDebtEntity, id, acct.SubType)
		}
	}

	amount, err := e.store.NetPositionAmount(ctx, entityID, counterpartyID)
	if err != nil {
		return nil, err
	}
	return &ledger.NetPosition{
		EntityID:             entityID,
		CounterpartyEntityID: counterpartyID,
		Amount:               amount,
	}, nil
}

// Statement returns recent log lines touching the entity as debit or credit.
func (e *Engine) Statement(ctx context.Context, entityID int64, limit int) ([]ledger.Log, error) {
	if _, err := e.store.GetEntity(ctx, entityID); err != nil {
		return nil, err
	}
	return e.store.LogsForEntity(ctx, entityID, limit)
}

// BalanceSheet partitions a user's entities by accounting element and sums
// cached balances per group. Credit-normal groups (Liability, Income,
// Equity) are negated here, at presentation time only; storage keeps the
// uniform sign convention.
func (e *Engine) BalanceSheet(ctx context.Context, userID int64) (*ledger.BalanceSheet, error) {
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	infos, err := e.store.ListEntitiesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	bs := &ledger.BalanceSheet{
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
	}

	for _, info := range infos {
		balance := info.Balance
		if ledger.CreditNormal(info.AccountType) {
			balance = balance.Neg()
		}
		line := ledger.BalanceSheetLine{
			EntityID:    info.ID,
			AccountID:   info.AccountID,
			AccountName: info.AccountName,
			SubType:     info.SubType,
			Balance:     balance,
		}

		switch info.AccountType {
		case ledger.TypeAsset:
			bs.Assets = append(bs.Assets, line)
			bs.TotalAssets = bs.TotalAssets.Add(balance)
		case ledger.TypeLiability:
			bs.Liabilities = append(bs.Liabilities, line)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(balance)
		case ledger.TypeExpense:
			bs.Expenses = append(bs.Expenses, line)
			bs.TotalExpenses = bs.TotalExpenses.Add(balance)
		case ledger.TypeIncome:
			bs.Income = append(bs.Income, line)
			bs.TotalIncome = bs.TotalIncome.Add(balance)
		case ledger.TypeEquity:
			bs.Equity = append(bs.Equity, line)
			bs.TotalEquity = bs.TotalEquity.Add(balance)
		}
	}

	return bs, nil
}

// Batch returns all log lines of one committed batch.
func (e *Engine) Batch(ctx context.Context, batchID string) ([]ledger.Log, error) {
	logs, err := e.store.LogsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ledger.ErrBatchNotFound
	}
	return logs, nil
}
