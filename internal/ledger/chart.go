package ledger

// ChartEntry is one row of the fixed account chart seeded at migration time.
// IDs are stable across environments so entities and logs can reference them
// without lookups.
type ChartEntry struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Type    AccountType `json:"account_type"`
	SubType SubType     `json:"sub_type"`
}

// SeedAccounts is the complete account taxonomy. Immutable configuration
// data: seeded once, never mutated or deleted.
var SeedAccounts = []ChartEntry{
	// Assets (1xx)
	{ID: 100, Name: "Cash & Bank Accounts", Type: TypeAsset, SubType: SubCash},
	{ID: 110, Name: "Accounts Receivable", Type: TypeAsset, SubType: SubAR},
	{ID: 120, Name: "Prepaid Expenses", Type: TypeAsset, SubType: SubPE},

	// Liabilities (2xx)
	{ID: 210, Name: "Accounts Payable", Type: TypeLiability, SubType: SubAP},
	{ID: 220, Name: "Unearned Revenue", Type: TypeLiability, SubType: SubUR},

	// Equity (3xx)
	{ID: 300, Name: "Owner's Equity", Type: TypeEquity, SubType: SubEquity},

	// Expenses (4xx)
	{ID: 400, Name: "General Shared Costs", Type: TypeExpense, SubType: SubSharedCost},

	// Income (5xx)
	{ID: 500, Name: "Service/External Income", Type: TypeIncome, SubType: SubIncome},
}

// LookupSeedAccount finds a chart entry by sub-type.
func LookupSeedAccount(st SubType) *ChartEntry {
	for i := range SeedAccounts {
		if SeedAccounts[i].SubType == st {
			return &SeedAccounts[i]
		}
	}
	return nil
}
