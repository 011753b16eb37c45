package ledger

import (
	"fmt"
	"time"
)

type AccountType string

const (
	TypeAsset     AccountType = "Asset"
	TypeLiability AccountType = "Liability"
	TypeExpense   AccountType = "Expense"
	TypeIncome    AccountType = "Income"
	TypeEquity    AccountType = "Equity"
)

var AllAccountTypes = []AccountType{
	TypeAsset,
	TypeLiability,
	TypeExpense,
	TypeIncome,
	TypeEquity,
}

// SubType is the fine-grained classification of an account. It drives the
// validation rules: SHARED_COST lines need an expense catalog, AR/AP lines
// need a counterparty.
type SubType string

const (
	SubCash       SubType = "CASH"
	SubAR         SubType = "AR" // accounts receivable: others owe this user
	SubAP         SubType = "AP" // accounts payable: this user owes others
	SubPE         SubType = "PE" // prepaid expense, amortized over time
	SubUR         SubType = "UR" // unearned revenue
	SubSharedCost SubType = "SHARED_COST"
	SubIncome     SubType = "INCOME"
	SubEquity     SubType = "EQUITY"
)

// taxonomy pins each sub-type to its accounting element. Seeded once at
// migration time; the validator assumes it never changes.
var taxonomy = map[SubType]AccountType{
	SubCash:       TypeAsset,
	SubAR:         TypeAsset,
	SubPE:         TypeAsset,
	SubAP:         TypeLiability,
	SubUR:         TypeLiability,
	SubSharedCost: TypeExpense,
	SubIncome:     TypeIncome,
	SubEquity:     TypeEquity,
}

type Account struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"account_type"`
	SubType   SubType     `json:"sub_type"`
	CreatedAt time.Time   `json:"created_at"`
}

// TypeForSubType returns the accounting element a sub-type belongs to.
func TypeForSubType(st SubType) (AccountType, error) {
	t, ok := taxonomy[st]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidSubType, st)
	}
	return t, nil
}

// Validate checks that the account's type matches the fixed taxonomy.
func (a *Account) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	expected, err := TypeForSubType(a.SubType)
	if err != nil {
		return err
	}
	if a.Type != expected {
		return fmt.Errorf("%w: sub_type %s belongs to %s, got %s",
			ErrTypeSubTypeMismatch, a.SubType, expected, a.Type)
	}
	return nil
}

// RequiresCounterparty reports whether a line touching this sub-type must
// declare an opposing entity. Mandatory for inter-user debt (AR/AP); PE/UR
// conversions against the user's own accounts may legitimately omit it.
func RequiresCounterparty(st SubType) bool {
	return st == SubAR || st == SubAP
}

// DebtTracking reports whether the sub-type participates in debt-chain
// lookups at all.
func DebtTracking(st SubType) bool {
	switch st {
	case SubAR, SubAP, SubPE, SubUR:
		return true
	}
	return false
}

// NormalBalance returns "Debit" or "Credit" for the account type.
// Assets and Expenses are debit-normal; the rest are credit-normal.
func NormalBalance(t AccountType) string {
	switch t {
	case TypeAsset, TypeExpense:
		return "Debit"
	default:
		return "Credit"
	}
}

// CreditNormal reports whether balances of this type are presented negated.
// Storage keeps a uniform sign convention (debit positive); the flip happens
// only at presentation time.
func CreditNormal(t AccountType) bool {
	return NormalBalance(t) == "Credit"
}

func TypeLabel(t AccountType) string {
	switch t {
	case TypeAsset:
		return "Assets"
	case TypeLiability:
		return "Liabilities"
	case TypeExpense:
		return "Expenses"
	case TypeIncome:
		return "Income"
	case TypeEquity:
		return "Equity"
	default:
		return string(t)
	}
}
