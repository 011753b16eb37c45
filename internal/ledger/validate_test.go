package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockView maps entity ids to the sub-type of their account.
type mockView map[int64]SubType

func (v mockView) Account(entityID int64) (*Account, bool) {
	st, ok := v[entityID]
	if !ok {
		return nil, false
	}
	t, err := TypeForSubType(st)
	if err != nil {
		return nil, false
	}
	return &Account{ID: entityID, Name: string(st), Type: t, SubType: st}, true
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func kinds(violations []Violation) []ViolationKind {
	out := make([]ViolationKind, len(violations))
	for i, v := range violations {
		out[i] = v.Kind
	}
	return out
}

func TestValidateBatchEmpty(t *testing.T) {
	violations := ValidateBatch(nil, mockView{})
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationEmptyBatch, violations[0].Kind)
	assert.Equal(t, -1, violations[0].Line)
}

func TestValidateBatchClean(t *testing.T) {
	view := mockView{1: SubCash, 2: SubSharedCost, 3: SubAR, 4: SubAP, 5: SubSharedCost}
	catalog := int64(7)
	apID := int64(4)
	arID := int64(3)

	lines := []Line{
		{DebitEntityID: 2, CreditEntityID: 1, Amount: amt("40.00"), CatalogID: &catalog},
		{DebitEntityID: 3, CreditEntityID: 1, Amount: amt("40.00"), CounterpartyEntityID: &apID},
		{DebitEntityID: 5, CreditEntityID: 4, Amount: amt("40.00"), CatalogID: &catalog, CounterpartyEntityID: &arID},
	}

	assert.Empty(t, ValidateBatch(lines, view))

	// An accepted batch nets to zero across all touched entities.
	total := decimal.Zero
	for _, delta := range Deltas(lines) {
		total = total.Add(delta)
	}
	assert.True(t, total.IsZero())
}

func TestValidateBatchNonPositiveAmount(t *testing.T) {
	view := mockView{1: SubCash, 2: SubEquity}

	for _, amount := range []string{"0", "-5.00"} {
		violations := ValidateBatch([]Line{
			{DebitEntityID: 1, CreditEntityID: 2, Amount: amt(amount)},
		}, view)
		assert.Contains(t, kinds(violations), ViolationNonPositiveAmount, "amount %s", amount)
	}
}

func TestValidateBatchSelfTransfer(t *testing.T) {
	view := mockView{1: SubCash}
	violations := ValidateBatch([]Line{
		{DebitEntityID: 1, CreditEntityID: 1, Amount: amt("10.00")},
	}, view)
	assert.Contains(t, kinds(violations), ViolationSelfTransfer)
}

func TestValidateBatchUnknownEntity(t *testing.T) {
	view := mockView{1: SubCash}
	violations := ValidateBatch([]Line{
		{DebitEntityID: 1, CreditEntityID: 99, Amount: amt("10.00")},
	}, view)
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnknownEntity, violations[0].Kind)
	assert.Equal(t, 0, violations[0].Line)
}

func TestValidateBatchCatalogRules(t *testing.T) {
	view := mockView{1: SubCash, 2: SubSharedCost, 3: SubEquity}
	catalog := int64(7)

	t.Run("shared cost line without catalog", func(t *testing.T) {
		violations := ValidateBatch([]Line{
			{DebitEntityID: 2, CreditEntityID: 1, Amount: amt("10.00")},
		}, view)
		assert.Contains(t, kinds(violations), ViolationMissingCatalog)
	})

	t.Run("catalog on a non-expense line", func(t *testing.T) {
		violations := ValidateBatch([]Line{
			{DebitEntityID: 1, CreditEntityID: 3, Amount: amt("10.00"), CatalogID: &catalog},
		}, view)
		assert.Contains(t, kinds(violations), ViolationUnexpectedCatalog)
	})
}

func TestValidateBatchCounterpartyRules(t *testing.T) {
	view := mockView{1: SubCash, 2: SubAR, 3: SubAP, 4: SubPE}

	t.Run("AR line without counterparty", func(t *testing.T) {
		violations := ValidateBatch([]Line{
			{DebitEntityID: 2, CreditEntityID: 1, Amount: amt("10.00")},
		}, view)
		assert.Contains(t, kinds(violations), ViolationMissingCounterparty)
	})

	t.Run("self-referential counterparty", func(t *testing.T) {
		cp := int64(2)
		violations := ValidateBatch([]Line{
			{DebitEntityID: 2, CreditEntityID: 1, Amount: amt("10.00"), CounterpartyEntityID: &cp},
		}, view)
		assert.Contains(t, kinds(violations), ViolationBadCounterparty)
	})

	t.Run("counterparty does not exist", func(t *testing.T) {
		cp := int64(99)
		violations := ValidateBatch([]Line{
			{DebitEntityID: 2, CreditEntityID: 1, Amount: amt("10.00"), CounterpartyEntityID: &cp},
		}, view)
		assert.Contains(t, kinds(violations), ViolationBadCounterparty)
	})

	t.Run("PE conversion may omit counterparty", func(t *testing.T) {
		violations := ValidateBatch([]Line{
			{DebitEntityID: 4, CreditEntityID: 1, Amount: amt("10.00")},
		}, view)
		assert.Empty(t, violations)
	})
}

func TestValidateBatchReportsAllViolations(t *testing.T) {
	view := mockView{1: SubCash, 2: SubSharedCost}

	// Line 0 fails twice (amount, self transfer), line 1 twice more
	// (unknown entity, missing catalog). All four must surface at once.
	lines := []Line{
		{DebitEntityID: 1, CreditEntityID: 1, Amount: amt("-1.00")},
		{DebitEntityID: 2, CreditEntityID: 99, Amount: amt("10.00")},
	}

	got := kinds(ValidateBatch(lines, view))
	assert.Contains(t, got, ViolationNonPositiveAmount)
	assert.Contains(t, got, ViolationSelfTransfer)
	assert.Contains(t, got, ViolationUnknownEntity)
	assert.Contains(t, got, ViolationMissingCatalog)
	assert.Len(t, got, 4)
}

func TestRejectedErrorMessage(t *testing.T) {
	err := &RejectedError{Violations: []Violation{
		{Line: -1, Kind: ViolationEmptyBatch, Description: "batch has no lines"},
	}}
	assert.Contains(t, err.Error(), "batch rejected")
	assert.Contains(t, err.Error(), "empty_batch")
}
