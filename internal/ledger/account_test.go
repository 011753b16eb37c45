package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeForSubType(t *testing.T) {
	typ, err := TypeForSubType(SubAP)
	require.NoError(t, err)
	assert.Equal(t, TypeLiability, typ)

	_, err = TypeForSubType(SubType("BOGUS"))
	assert.ErrorIs(t, err, ErrInvalidSubType)
}

func TestAccountValidate(t *testing.T) {
	ok := Account{Name: "Cash", Type: TypeAsset, SubType: SubCash}
	assert.NoError(t, ok.Validate())

	mismatch := Account{Name: "Cash", Type: TypeLiability, SubType: SubCash}
	assert.ErrorIs(t, mismatch.Validate(), ErrTypeSubTypeMismatch)

	unnamed := Account{Type: TypeAsset, SubType: SubCash}
	assert.Error(t, unnamed.Validate())
}

func TestCounterpartyAndDebtClassification(t *testing.T) {
	assert.True(t, RequiresCounterparty(SubAR))
	assert.True(t, RequiresCounterparty(SubAP))
	assert.False(t, RequiresCounterparty(SubPE))
	assert.False(t, RequiresCounterparty(SubUR))
	assert.False(t, RequiresCounterparty(SubCash))

	assert.True(t, DebtTracking(SubPE))
	assert.True(t, DebtTracking(SubUR))
	assert.False(t, DebtTracking(SubSharedCost))
}

func TestNormalBalance(t *testing.T) {
	assert.Equal(t, "Debit", NormalBalance(TypeAsset))
	assert.Equal(t, "Debit", NormalBalance(TypeExpense))
	assert.Equal(t, "Credit", NormalBalance(TypeLiability))
	assert.Equal(t, "Credit", NormalBalance(TypeIncome))
	assert.Equal(t, "Credit", NormalBalance(TypeEquity))

	assert.False(t, CreditNormal(TypeAsset))
	assert.True(t, CreditNormal(TypeEquity))
}

func TestSeedAccountsCoverTaxonomy(t *testing.T) {
	assert.Len(t, SeedAccounts, len(taxonomy))

	seen := make(map[SubType]bool)
	for _, sa := range SeedAccounts {
		acct := Account{ID: sa.ID, Name: sa.Name, Type: sa.Type, SubType: sa.SubType}
		assert.NoError(t, acct.Validate(), "seed %s", sa.SubType)
		assert.False(t, seen[sa.SubType], "duplicate sub-type %s", sa.SubType)
		seen[sa.SubType] = true
	}

	cash := LookupSeedAccount(SubCash)
	require.NotNil(t, cash)
	assert.Equal(t, int64(100), cash.ID)
	assert.Nil(t, LookupSeedAccount(SubType("BOGUS")))
}
