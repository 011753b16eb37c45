package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

// amountPlaces is the precision balances are kept at, matching the store's
// DECIMAL(14,4) heritage.
const amountPlaces = 4

// RecordSharedExpense posts the canonical shared-expense batch: the payer's
// cash funds everyone's share of a cost at once. participants must include
// the payer; shares are split equally, with any indivisible remainder
// absorbed by the payer so the batch balances exactly.
//
// For each non-paying participant two lines are created, the payer's AR
// claim against them, and their own SHARED_COST expense funded by an AP
// liability, plus one line for the payer's own share. Three participants
// yield five lines.
func (e *Engine) RecordSharedExpense(ctx context.Context, payerID int64, participantIDs []int64, total decimal.Decimal, catalogID int64, note string) (string, error) {
	var others []int64
	payerIncluded := false
	for _, id := range participantIDs {
		if id == payerID {
			payerIncluded = true
			continue
		}
		others = append(others, id)
	}
	if !payerIncluded {
		return "", fmt.Errorf("payer %d must be among the participants", payerID)
	}

	n := int64(len(others)) + 1
	base := total.Div(decimal.NewFromInt(n)).Truncate(amountPlaces)
	payerShare := total.Sub(base.Mul(decimal.NewFromInt(n - 1)))

	payerCash, err := e.store.EnsureEntity(ctx, payerID, ledger.SubCash)
	if err != nil {
		return "", err
	}
	payerCost, err := e.store.EnsureEntity(ctx, payerID, ledger.SubSharedCost)
	if err != nil {
		return "", err
	}

	catalog := catalogID
	lines := []ledger.Line{{
		DebitEntityID:  payerCost.ID,
		CreditEntityID: payerCash.ID,
		Amount:         payerShare,
		CatalogID:      &catalog,
		Note:           note,
	}}

	if len(others) > 0 {
		payerAR, err := e.store.EnsureEntity(ctx, payerID, ledger.SubAR)
		if err != nil {
			return "", err
		}
		for _, otherID := range others {
			otherCost, err := e.store.EnsureEntity(ctx, otherID, ledger.SubSharedCost)
			if err != nil {
				return "", err
			}
			otherAP, err := e.store.EnsureEntity(ctx, otherID, ledger.SubAP)
			if err != nil {
				return "", err
			}

			apID := otherAP.ID
			arID := payerAR.ID
			lines = append(lines,
				ledger.Line{
					DebitEntityID:        payerAR.ID,
					CreditEntityID:       payerCash.ID,
					Amount:               base,
					CounterpartyEntityID: &apID,
					Note:                 note,
				},
				ledger.Line{
					DebitEntityID:        otherCost.ID,
					CreditEntityID:       otherAP.ID,
					Amount:               base,
					CatalogID:            &catalog,
					CounterpartyEntityID: &arID,
					Note:                 note,
				},
			)
		}
	}

	return e.PostBatch(ctx, lines)
}

// RecordSettlement posts the two-line repayment of an outstanding debt:
// the debtor's cash extinguishes their AP liability, and the creditor's AR
// claim converts back into cash. Counterparty links on both lines keep the
// pair's net position queryable.
func (e *Engine) RecordSettlement(ctx context.Context, debtorID, creditorID int64, amount decimal.Decimal, note string) (string, error) {
	debtorAP, err := e.store.EnsureEntity(ctx, debtorID, ledger.SubAP)
	if err != nil {
		return "", err
	}
	debtorCash, err := e.store.EnsureEntity(ctx, debtorID, ledger.SubCash)
	if err != nil {
		return "", err
	}
	creditorCash, err := e.store.EnsureEntity(ctx, creditorID, ledger.SubCash)
	if err != nil {
		return "", err
	}
	creditorAR, err := e.store.EnsureEntity(ctx, creditorID, ledger.SubAR)
	if err != nil {
		return "", err
	}

	arID := creditorAR.ID
	apID := debtorAP.ID
	lines := []ledger.Line{
		{
			DebitEntityID:        debtorAP.ID,
			CreditEntityID:       debtorCash.ID,
			Amount:               amount,
			CounterpartyEntityID: &arID,
			Note:                 note,
		},
		{
			DebitEntityID:        creditorCash.ID,
			CreditEntityID:       creditorAR.ID,
			Amount:               amount,
			CounterpartyEntityID: &apID,
			Note:                 note,
		},
	}

	return e.PostBatch(ctx, lines)
}

// RecordDeposit posts a cash contribution against the user's equity.
func (e *Engine) RecordDeposit(ctx context.Context, userID int64, amount decimal.Decimal, note string) (string, error) {
	cash, err := e.store.EnsureEntity(ctx, userID, ledger.SubCash)
	if err != nil {
		return "", err
	}
	equity, err := e.store.EnsureEntity(ctx, userID, ledger.SubEquity)
	if err != nil {
		return "", err
	}

	return e.PostBatch(ctx, []ledger.Line{{
		DebitEntityID:  cash.ID,
		CreditEntityID: equity.ID,
		Amount:         amount,
		Note:           note,
	}})
}

// RecordPrepayment moves the user's cash into their prepaid-expense asset.
// No counterparty: this is a self-contained asset conversion.
func (e *Engine) RecordPrepayment(ctx context.Context, userID int64, amount decimal.Decimal, note string) (string, error) {
	pe, err := e.store.EnsureEntity(ctx, userID, ledger.SubPE)
	if err != nil {
		return "", err
	}
	cash, err := e.store.EnsureEntity(ctx, userID, ledger.SubCash)
	if err != nil {
		return "", err
	}

	return e.PostBatch(ctx, []ledger.Line{{
		DebitEntityID:  pe.ID,
		CreditEntityID: cash.ID,
		Amount:         amount,
		Note:           note,
	}})
}

// PostAmortization expenses one slice of a prepaid asset: SHARED_COST debit
// against PE credit. When to call this is the caller's scheduling concern;
// the engine only provides the primitive.
func (e *Engine) PostAmortization(ctx context.Context, userID int64, amount decimal.Decimal, catalogID int64, note string) (string, error) {
	cost, err := e.store.EnsureEntity(ctx, userID, ledger.SubSharedCost)
	if err != nil {
		return "", err
	}
	pe, err := e.store.EnsureEntity(ctx, userID, ledger.SubPE)
	if err != nil {
		return "", err
	}

	catalog := catalogID
	return e.PostBatch(ctx, []ledger.Line{{
		DebitEntityID:  cost.ID,
		CreditEntityID: pe.ID,
		Amount:         amount,
		CatalogID:      &catalog,
		Note:           note,
	}})
}
