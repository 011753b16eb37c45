package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one candidate ledger line before commit. Its effect is always
// "increase the debit entity's signed balance by Amount, decrease the credit
// entity's by Amount", regardless of account type.
type Line struct {
	DebitEntityID        int64           `json:"debit_entity_id"`
	CreditEntityID       int64           `json:"credit_entity_id"`
	Amount               decimal.Decimal `json:"amount"`
	CounterpartyEntityID *int64          `json:"counterparty_entity_id,omitempty"`
	CatalogID            *int64          `json:"catalog_id,omitempty"`
	Note                 string          `json:"note,omitempty"`
}

// Log is one persisted, immutable ledger line. Rows are never updated or
// deleted; corrections are new reversal rows.
type Log struct {
	ID                   int64           `json:"id"`
	BatchID              string          `json:"batch_id"`
	DebitEntityID        int64           `json:"debit_entity_id"`
	CreditEntityID       int64           `json:"credit_entity_id"`
	Amount               decimal.Decimal `json:"amount"`
	CounterpartyEntityID *int64          `json:"counterparty_entity_id,omitempty"`
	CatalogID            *int64          `json:"catalog_id,omitempty"`
	Note                 string          `json:"note,omitempty"`
	ReversesBatchID      string          `json:"reverses_batch_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Line strips a persisted log back down to its candidate form.
func (l Log) Line() Line {
	return Line{
		DebitEntityID:        l.DebitEntityID,
		CreditEntityID:       l.CreditEntityID,
		Amount:               l.Amount,
		CounterpartyEntityID: l.CounterpartyEntityID,
		CatalogID:            l.CatalogID,
		Note:                 l.Note,
	}
}

// Deltas accumulates the net signed effect of a batch per touched entity.
// A batch may touch the same entity on several lines; the committer applies
// one update per entity, never line-by-line.
func Deltas(lines []Line) map[int64]decimal.Decimal {
	deltas := make(map[int64]decimal.Decimal)
	for _, ln := range lines {
		deltas[ln.DebitEntityID] = deltas[ln.DebitEntityID].Add(ln.Amount)
		deltas[ln.CreditEntityID] = deltas[ln.CreditEntityID].Sub(ln.Amount)
	}
	return deltas
}

// TouchedEntities returns the distinct debit/credit entity ids of a batch in
// ascending order. Balance updates are applied in this fixed order so two
// overlapping batches can never deadlock on each other.
func TouchedEntities(lines []Line) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, ln := range lines {
		for _, id := range []int64{ln.DebitEntityID, ln.CreditEntityID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
