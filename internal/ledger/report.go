package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSheetLine is one entity's contribution to a user's balance sheet.
// Balance here carries the presentation sign: credit-normal groups
// (Liability, Income, Equity) are negated from the uniform storage
// convention so a growing debt reads as a positive number.
type BalanceSheetLine struct {
	EntityID    int64           `json:"entity_id"`
	AccountID   int64           `json:"account_id"`
	AccountName string          `json:"account_name"`
	SubType     SubType         `json:"sub_type"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheet partitions a user's entities by accounting element.
type BalanceSheet struct {
	UserID           int64              `json:"user_id"`
	Assets           []BalanceSheetLine `json:"assets"`
	Liabilities      []BalanceSheetLine `json:"liabilities"`
	Expenses         []BalanceSheetLine `json:"expenses"`
	Income           []BalanceSheetLine `json:"income"`
	Equity           []BalanceSheetLine `json:"equity"`
	TotalAssets      decimal.Decimal    `json:"total_assets"`
	TotalLiabilities decimal.Decimal    `json:"total_liabilities"`
	TotalExpenses    decimal.Decimal    `json:"total_expenses"`
	TotalIncome      decimal.Decimal    `json:"total_income"`
	TotalEquity      decimal.Decimal    `json:"total_equity"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// NetPosition is the outstanding claim/obligation between exactly one pair
// of debt entities. It is distinct from either entity's total balance, which
// may aggregate positions against many counterparties.
type NetPosition struct {
	EntityID             int64           `json:"entity_id"`
	CounterpartyEntityID int64           `json:"counterparty_entity_id"`
	Amount               decimal.Decimal `json:"amount"`
}
