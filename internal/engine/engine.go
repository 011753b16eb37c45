// Package engine is the ledger core: it validates candidate batches,
// commits them atomically with incremental balance maintenance, generates
// compensating reversal batches, and serves balance and debt queries.
package engine

import (
	"context"

	"github.com/divvyhq/divvy/internal/ledger"
	"github.com/divvyhq/divvy/internal/store"
)

type Engine struct {
	store *store.Store
}

func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// entityView is the resolved account classification snapshot the validator
// runs against. Validation itself is stateless; the snapshot is read once
// per submission.
type entityView map[int64]ledger.Account

func (v entityView) Account(entityID int64) (*ledger.Account, bool) {
	acct, ok := v[entityID]
	if !ok {
		return nil, false
	}
	return &acct, true
}

func (e *Engine) viewFor(ctx context.Context, lines []ledger.Line) (entityView, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, ln := range lines {
		for _, id := range []int64{ln.DebitEntityID, ln.CreditEntityID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if ln.CounterpartyEntityID != nil && !seen[*ln.CounterpartyEntityID] {
			seen[*ln.CounterpartyEntityID] = true
			ids = append(ids, *ln.CounterpartyEntityID)
		}
	}

	accounts, err := e.store.EntityAccounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return entityView(accounts), nil
}
