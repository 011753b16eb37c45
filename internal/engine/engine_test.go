package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvyhq/divvy/internal/ledger"
	"github.com/divvyhq/divvy/internal/store"
)

type fixture struct {
	store  *store.Store
	engine *Engine

	alice, bob, carol *ledger.User
	catalogID         int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, engine: New(st)}

	f.alice, err = st.CreateUser(ctx, "alice")
	require.NoError(t, err)
	f.bob, err = st.CreateUser(ctx, "bob")
	require.NoError(t, err)
	f.carol, err = st.CreateUser(ctx, "carol")
	require.NoError(t, err)

	cat, err := st.CreateCatalog(ctx, "Utilities", nil)
	require.NoError(t, err)
	f.catalogID = cat.ID

	return f
}

func (f *fixture) entity(t *testing.T, userID int64, st ledger.SubType) *ledger.AccountEntity {
	t.Helper()
	ent, err := f.store.EnsureEntity(context.Background(), userID, st)
	require.NoError(t, err)
	return ent
}

func (f *fixture) balance(t *testing.T, entityID int64) decimal.Decimal {
	t.Helper()
	b, err := f.engine.EntityBalance(context.Background(), entityID, false)
	require.NoError(t, err)
	return b
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestSharedExpenseThreeWaySplit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Alice fronts a 120.00 utility bill split three ways.
	batchID, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID, f.carol.ID},
		decimal.RequireFromString("120.00"), f.catalogID, "utility bill")
	require.NoError(t, err)

	logs, err := f.engine.Batch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, logs, 5)

	requireAmount(t, "-120.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubCash).ID))
	requireAmount(t, "80.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubAR).ID))
	requireAmount(t, "40.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubSharedCost).ID))
	requireAmount(t, "-40.00", f.balance(t, f.entity(t, f.bob.ID, ledger.SubAP).ID))
	requireAmount(t, "40.00", f.balance(t, f.entity(t, f.bob.ID, ledger.SubSharedCost).ID))
	requireAmount(t, "-40.00", f.balance(t, f.entity(t, f.carol.ID, ledger.SubAP).ID))
	requireAmount(t, "40.00", f.balance(t, f.entity(t, f.carol.ID, ledger.SubSharedCost).ID))
}

func TestSharedExpensePayerAbsorbsRemainder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 100.00 over three participants does not divide evenly at four
	// places: the others owe 33.3333 each, the payer carries 33.3334.
	_, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID, f.carol.ID},
		decimal.RequireFromString("100.00"), f.catalogID, "groceries")
	require.NoError(t, err)

	requireAmount(t, "-100.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubCash).ID))
	requireAmount(t, "33.3334", f.balance(t, f.entity(t, f.alice.ID, ledger.SubSharedCost).ID))
	requireAmount(t, "-33.3333", f.balance(t, f.entity(t, f.bob.ID, ledger.SubAP).ID))
	requireAmount(t, "66.6666", f.balance(t, f.entity(t, f.alice.ID, ledger.SubAR).ID))
}

func TestSharedExpensePayerMustParticipate(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSharedExpense(context.Background(), f.alice.ID,
		[]int64{f.bob.ID, f.carol.ID},
		decimal.RequireFromString("30.00"), f.catalogID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be among the participants")
}

func TestSettlementClearsNetPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID, f.carol.ID},
		decimal.RequireFromString("120.00"), f.catalogID, "utility bill")
	require.NoError(t, err)

	aliceAR := f.entity(t, f.alice.ID, ledger.SubAR)
	bobAP := f.entity(t, f.bob.ID, ledger.SubAP)

	pos, err := f.engine.NetPosition(ctx, aliceAR.ID, bobAP.ID)
	require.NoError(t, err)
	requireAmount(t, "40.00", pos.Amount)

	_, err = f.engine.RecordSettlement(ctx, f.bob.ID, f.alice.ID,
		decimal.RequireFromString("40.00"), "bob pays his share")
	require.NoError(t, err)

	pos, err = f.engine.NetPosition(ctx, aliceAR.ID, bobAP.ID)
	require.NoError(t, err)
	assert.True(t, pos.Amount.IsZero(), "got %s", pos.Amount)

	// Bob's liability is extinguished; Alice is still owed by Carol.
	requireAmount(t, "0", f.balance(t, bobAP.ID))
	requireAmount(t, "40.00", f.balance(t, aliceAR.ID))
	requireAmount(t, "-40.00", f.balance(t, f.entity(t, f.bob.ID, ledger.SubCash).ID))
	requireAmount(t, "-80.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubCash).ID))
}

func TestNetPositionRequiresDebtEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID},
		decimal.RequireFromString("20.00"), f.catalogID, "")
	require.NoError(t, err)

	aliceCash := f.entity(t, f.alice.ID, ledger.SubCash)
	aliceAR := f.entity(t, f.alice.ID, ledger.SubAR)
	bobAP := f.entity(t, f.bob.ID, ledger.SubAP)

	_, err = f.engine.NetPosition(ctx, aliceCash.ID, bobAP.ID)
	assert.ErrorIs(t, err, ledger.ErrNotDebtEntity)
	_, err = f.engine.NetPosition(ctx, aliceAR.ID, aliceCash.ID)
	assert.ErrorIs(t, err, ledger.ErrNotDebtEntity)

	_, err = f.engine.NetPosition(ctx, aliceAR.ID, 999)
	assert.ErrorIs(t, err, ledger.ErrEntityNotFound)

	pos, err := f.engine.NetPosition(ctx, aliceAR.ID, bobAP.ID)
	require.NoError(t, err)
	requireAmount(t, "10.00", pos.Amount)
}

func TestPostBatchRejectsWithAllViolations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cash := f.entity(t, f.alice.ID, ledger.SubCash)

	_, err := f.engine.PostBatch(ctx, []ledger.Line{
		{DebitEntityID: cash.ID, CreditEntityID: cash.ID, Amount: decimal.RequireFromString("-1")},
		{DebitEntityID: cash.ID, CreditEntityID: 999, Amount: decimal.RequireFromString("5")},
	})

	var rejected *ledger.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Len(t, rejected.Violations, 3)

	// A rejected submission must leave no trace.
	logs, err := f.store.LogsForEntity(ctx, cash.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
	requireAmount(t, "0", f.balance(t, cash.ID))
}

func TestPostBatchEmptyRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.PostBatch(context.Background(), nil)
	var rejected *ledger.RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Len(t, rejected.Violations, 1)
	assert.Equal(t, ledger.ViolationEmptyBatch, rejected.Violations[0].Kind)
}

func TestReversalRestoresBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batchID, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID, f.carol.ID},
		decimal.RequireFromString("120.00"), f.catalogID, "utility bill")
	require.NoError(t, err)

	reversalID, err := f.engine.ReverseBatch(ctx, batchID)
	require.NoError(t, err)
	assert.NotEqual(t, batchID, reversalID)

	// Every touched entity is back to zero, in cache and in replay.
	for _, pair := range []struct {
		userID int64
		sub    ledger.SubType
	}{
		{f.alice.ID, ledger.SubCash},
		{f.alice.ID, ledger.SubAR},
		{f.alice.ID, ledger.SubSharedCost},
		{f.bob.ID, ledger.SubAP},
		{f.bob.ID, ledger.SubSharedCost},
		{f.carol.ID, ledger.SubAP},
		{f.carol.ID, ledger.SubSharedCost},
	} {
		ent := f.entity(t, pair.userID, pair.sub)
		cached := f.balance(t, ent.ID)
		assert.True(t, cached.IsZero(), "user %d %s cached %s", pair.userID, pair.sub, cached)

		replayed, err := f.engine.EntityBalance(ctx, ent.ID, true)
		require.NoError(t, err)
		assert.True(t, replayed.IsZero(), "user %d %s replayed %s", pair.userID, pair.sub, replayed)
	}

	// The reversal batch mirrors the original line for line.
	logs, err := f.engine.Batch(ctx, reversalID)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	for _, lg := range logs {
		assert.Equal(t, batchID, lg.ReversesBatchID)
	}
}

func TestReverseBatchOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batchID, err := f.engine.RecordDeposit(ctx, f.alice.ID,
		decimal.RequireFromString("50.00"), "opening deposit")
	require.NoError(t, err)

	_, err = f.engine.ReverseBatch(ctx, batchID)
	require.NoError(t, err)

	_, err = f.engine.ReverseBatch(ctx, batchID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyReversed)
}

func TestReverseUnknownBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ReverseBatch(context.Background(), "no-such-batch")
	assert.ErrorIs(t, err, ledger.ErrBatchNotFound)
}

func TestReversalOfReversalIsAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original, err := f.engine.RecordDeposit(ctx, f.alice.ID,
		decimal.RequireFromString("50.00"), "")
	require.NoError(t, err)

	reversal, err := f.engine.ReverseBatch(ctx, original)
	require.NoError(t, err)

	// Un-reversing reinstates the original effect.
	_, err = f.engine.ReverseBatch(ctx, reversal)
	require.NoError(t, err)

	cash := f.entity(t, f.alice.ID, ledger.SubCash)
	requireAmount(t, "50.00", f.balance(t, cash.ID))
}

func TestDepositAndBalanceSheet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordDeposit(ctx, f.alice.ID,
		decimal.RequireFromString("100.00"), "opening deposit")
	require.NoError(t, err)

	bs, err := f.engine.BalanceSheet(ctx, f.alice.ID)
	require.NoError(t, err)

	require.Len(t, bs.Assets, 1)
	requireAmount(t, "100.00", bs.TotalAssets)

	// Equity is credit-normal: stored negative, presented positive.
	require.Len(t, bs.Equity, 1)
	requireAmount(t, "100.00", bs.TotalEquity)
	assert.Equal(t, ledger.SubEquity, bs.Equity[0].SubType)

	_, err = f.engine.BalanceSheet(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestBalanceSheetPresentsLiabilitiesPositive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID},
		decimal.RequireFromString("60.00"), f.catalogID, "dinner")
	require.NoError(t, err)

	bs, err := f.engine.BalanceSheet(ctx, f.bob.ID)
	require.NoError(t, err)

	// Bob owes 30.00: stored as -30.00, presented as a positive debt.
	requireAmount(t, "30.00", bs.TotalLiabilities)
	requireAmount(t, "30.00", bs.TotalExpenses)
}

func TestPrepaymentAndAmortization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordPrepayment(ctx, f.alice.ID,
		decimal.RequireFromString("120.00"), "annual streaming plan")
	require.NoError(t, err)

	pe := f.entity(t, f.alice.ID, ledger.SubPE)
	requireAmount(t, "120.00", f.balance(t, pe.ID))

	_, err = f.engine.PostAmortization(ctx, f.alice.ID,
		decimal.RequireFromString("10.00"), f.catalogID, "january slice")
	require.NoError(t, err)

	requireAmount(t, "110.00", f.balance(t, pe.ID))
	requireAmount(t, "10.00", f.balance(t, f.entity(t, f.alice.ID, ledger.SubSharedCost).ID))
}

func TestCachedBalanceMatchesReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordSharedExpense(ctx, f.alice.ID,
		[]int64{f.alice.ID, f.bob.ID, f.carol.ID},
		decimal.RequireFromString("99.99"), f.catalogID, "")
	require.NoError(t, err)
	_, err = f.engine.RecordSettlement(ctx, f.bob.ID, f.alice.ID,
		decimal.RequireFromString("33.33"), "")
	require.NoError(t, err)

	for _, userID := range []int64{f.alice.ID, f.bob.ID, f.carol.ID} {
		infos, err := f.store.ListEntitiesForUser(ctx, userID)
		require.NoError(t, err)
		for _, info := range infos {
			replayed, err := f.engine.EntityBalance(ctx, info.ID, true)
			require.NoError(t, err)
			assert.True(t, info.Balance.Equal(replayed),
				"entity %d cached %s replayed %s", info.ID, info.Balance, replayed)
		}
	}
}

func TestStaleBalanceFallsBackToReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordDeposit(ctx, f.alice.ID,
		decimal.RequireFromString("75.00"), "")
	require.NoError(t, err)

	cash := f.entity(t, f.alice.ID, ledger.SubCash)
	require.NoError(t, f.store.MarkStale(ctx, cash.ID))

	// Even without recompute=true a stale entity is served from the log.
	requireAmount(t, "75.00", f.balance(t, cash.ID))

	repaired, err := f.engine.RepairBalance(ctx, cash.ID)
	require.NoError(t, err)
	requireAmount(t, "75.00", repaired)

	ent, err := f.store.GetEntity(ctx, cash.ID)
	require.NoError(t, err)
	assert.False(t, ent.Stale)
}

func TestStatement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RecordDeposit(ctx, f.alice.ID, decimal.RequireFromString("10.00"), "first")
	require.NoError(t, err)
	_, err = f.engine.RecordDeposit(ctx, f.alice.ID, decimal.RequireFromString("20.00"), "second")
	require.NoError(t, err)

	cash := f.entity(t, f.alice.ID, ledger.SubCash)

	logs, err := f.engine.Statement(ctx, cash.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "second", logs[0].Note)

	limited, err := f.engine.Statement(ctx, cash.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.engine.Statement(ctx, 999, 0)
	assert.ErrorIs(t, err, ledger.ErrEntityNotFound)
}
