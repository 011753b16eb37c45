package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountEntity binds one account to one user: the unit of balance tracking.
// At most one entity exists per (user, account) pair; entities are created
// lazily the first time a user needs that account type.
//
// Balance is a derived cache over the transaction log. The log is the sole
// source of truth: the cache must always equal the sum of amounts where the
// entity is the debit side minus the sum where it is the credit side.
// Version backs the optimistic concurrency check applied on commit.
type AccountEntity struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"owner_id"`
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Stale     bool            `json:"stale,omitempty"`
	Version   int64           `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

// EntityInfo is an entity joined with its account classification, as served
// by list endpoints and consumed by the balance-sheet aggregation.
type EntityInfo struct {
	AccountEntity
	AccountName string      `json:"account_name"`
	AccountType AccountType `json:"account_type"`
	SubType     SubType     `json:"sub_type"`
}
