package engine

import (
	"context"
	"fmt"

	"github.com/divvyhq/divvy/internal/ledger"
)

// ReverseBatch builds and commits a compensating batch that exactly negates
// a prior batch: each line's debit and credit entities are swapped, amount,
// counterparty, and catalog preserved, with a note back-referencing the
// original. The new batch goes through the same validate/commit path as any
// other. Reversal is whole-batch only, and a batch can be reversed once;
// the check is repeated inside the commit transaction, so of two racing
// reversal requests the second fails with ledger.ErrAlreadyReversed and no
// side effects.
func (e *Engine) ReverseBatch(ctx context.Context, batchID string) (string, error) {
	logs, err := e.store.LogsByBatch(ctx, batchID)
	if err != nil {
		return "", err
	}
	if len(logs) == 0 {
		return "", fmt.Errorf("%w: %s", ledger.ErrBatchNotFound, batchID)
	}

	reversed, err := e.store.HasReversal(ctx, batchID)
	if err != nil {
		return "", err
	}
	if reversed {
		return "", fmt.Errorf("%w: batch %s", ledger.ErrAlreadyReversed, batchID)
	}

	lines := make([]ledger.Line, len(logs))
	for i, lg := range logs {
		lines[i] = ledger.Line{
			DebitEntityID:        lg.CreditEntityID,
			CreditEntityID:       lg.DebitEntityID,
			Amount:               lg.Amount,
			CounterpartyEntityID: lg.CounterpartyEntityID,
			CatalogID:            lg.CatalogID,
			Note:                 fmt.Sprintf("reversal of batch %s", batchID),
		}
	}

	return e.postBatch(ctx, lines, batchID)
}
