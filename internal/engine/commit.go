package engine

import (
	"context"

	"github.com/divvyhq/divvy/internal/ledger"
	"github.com/divvyhq/divvy/internal/store"
)

// PostBatch runs a candidate batch through validation and, if clean, commits
// it atomically. Returns the generated batch id. A *ledger.RejectedError
// carries the complete violation list; ledger.ErrConflict means a concurrent
// commit touched an overlapping entity and the whole batch may be retried
// from validation.
func (e *Engine) PostBatch(ctx context.Context, lines []ledger.Line) (string, error) {
	return e.postBatch(ctx, lines, "")
}

func (e *Engine) postBatch(ctx context.Context, lines []ledger.Line, reverses string) (string, error) {
	view, err := e.viewFor(ctx, lines)
	if err != nil {
		return "", err
	}

	if violations := ledger.ValidateBatch(lines, view); len(violations) > 0 {
		return "", &ledger.RejectedError{Violations: violations}
	}

	batchID := e.store.NextBatchID()

	logs := make([]ledger.Log, len(lines))
	for i, ln := range lines {
		logs[i] = ledger.Log{
			BatchID:              batchID,
			DebitEntityID:        ln.DebitEntityID,
			CreditEntityID:       ln.CreditEntityID,
			Amount:               ln.Amount,
			CounterpartyEntityID: ln.CounterpartyEntityID,
			CatalogID:            ln.CatalogID,
			Note:                 ln.Note,
			ReversesBatchID:      reverses,
		}
	}

	updates, err := e.balanceUpdates(ctx, lines)
	if err != nil {
		return "", err
	}

	if err := e.store.CommitBatch(ctx, batchID, logs, updates, reverses); err != nil {
		return "", err
	}
	return batchID, nil
}

// balanceUpdates reads every touched entity once and folds the batch's
// per-entity deltas into new cached balances. Entities are visited in
// ascending id order so overlapping batches always contend in the same
// sequence.
func (e *Engine) balanceUpdates(ctx context.Context, lines []ledger.Line) ([]store.BalanceUpdate, error) {
	deltas := ledger.Deltas(lines)

	var updates []store.BalanceUpdate
	for _, id := range ledger.TouchedEntities(lines) {
		ent, err := e.store.GetEntity(ctx, id)
		if err != nil {
			return nil, err
		}
		updates = append(updates, store.BalanceUpdate{
			EntityID:   id,
			NewBalance: ent.Balance.Add(deltas[id]),
			Version:    ent.Version,
		})
	}
	return updates, nil
}
