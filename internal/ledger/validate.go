package ledger

import "fmt"

// ViolationKind classifies a single validation failure.
type ViolationKind string

const (
	ViolationEmptyBatch          ViolationKind = "empty_batch"
	ViolationNonPositiveAmount   ViolationKind = "non_positive_amount"
	ViolationSelfTransfer        ViolationKind = "self_transfer"
	ViolationUnknownEntity       ViolationKind = "unknown_entity"
	ViolationMissingCatalog      ViolationKind = "missing_catalog"
	ViolationUnexpectedCatalog   ViolationKind = "unexpected_catalog"
	ViolationMissingCounterparty ViolationKind = "missing_counterparty"
	ViolationBadCounterparty     ViolationKind = "bad_counterparty"
)

// Violation pins one rule failure to one line. Line is -1 for batch-level
// violations (empty batch, balance law).
type Violation struct {
	Line        int           `json:"line"`
	Kind        ViolationKind `json:"kind"`
	Description string        `json:"description"`
}

func (v Violation) String() string {
	if v.Line < 0 {
		return fmt.Sprintf("batch: %s (%s)", v.Description, v.Kind)
	}
	return fmt.Sprintf("line %d: %s (%s)", v.Line, v.Description, v.Kind)
}

// EntityView resolves an entity id to its account classification. The
// validator is pure: everything it needs is in the lines and this view.
type EntityView interface {
	Account(entityID int64) (*Account, bool)
}

// ValidateBatch checks a candidate batch against every structural and
// accounting rule and reports all violations at once, never failing fast,
// so a caller sees every problem in one round trip. A line may appear in
// the result more than once.
//
// The balance law needs no separate check: each line carries one amount
// applied to exactly one debit and one credit entity, so any batch of
// well-formed lines contributes equally to both sides by construction.
func ValidateBatch(lines []Line, view EntityView) []Violation {
	var errs []Violation

	if len(lines) == 0 {
		return []Violation{{Line: -1, Kind: ViolationEmptyBatch, Description: "batch has no lines"}}
	}

	for i, ln := range lines {
		if ln.Amount.Sign() <= 0 {
			errs = append(errs, Violation{
				Line: i, Kind: ViolationNonPositiveAmount,
				Description: fmt.Sprintf("amount %s must be strictly positive", ln.Amount),
			})
		}

		if ln.DebitEntityID == ln.CreditEntityID {
			errs = append(errs, Violation{
				Line: i, Kind: ViolationSelfTransfer,
				Description: fmt.Sprintf("debit and credit reference the same entity %d", ln.DebitEntityID),
			})
		}

		debitAcct, debitOK := view.Account(ln.DebitEntityID)
		if !debitOK {
			errs = append(errs, Violation{
				Line: i, Kind: ViolationUnknownEntity,
				Description: fmt.Sprintf("debit entity %d does not exist", ln.DebitEntityID),
			})
		}
		creditAcct, creditOK := view.Account(ln.CreditEntityID)
		if !creditOK {
			errs = append(errs, Violation{
				Line: i, Kind: ViolationUnknownEntity,
				Description: fmt.Sprintf("credit entity %d does not exist", ln.CreditEntityID),
			})
		}

		errs = append(errs, checkCatalog(i, ln, debitAcct, creditAcct)...)
		errs = append(errs, checkCounterparty(i, ln, debitAcct, creditAcct, view)...)
	}

	return errs
}

// checkCatalog enforces the SHARED_COST classification rule: an expense line
// must carry a catalog id, and only expense lines may carry one.
func checkCatalog(i int, ln Line, debit, credit *Account) []Violation {
	sharedCost := (debit != nil && debit.SubType == SubSharedCost) ||
		(credit != nil && credit.SubType == SubSharedCost)

	switch {
	case sharedCost && ln.CatalogID == nil:
		return []Violation{{
			Line: i, Kind: ViolationMissingCatalog,
			Description: "SHARED_COST line requires an expense_catalog_id",
		}}
	case !sharedCost && ln.CatalogID != nil && debit != nil && credit != nil:
		return []Violation{{
			Line: i, Kind: ViolationUnexpectedCatalog,
			Description: fmt.Sprintf("expense_catalog_id %d set on a line with no SHARED_COST entity", *ln.CatalogID),
		}}
	}
	return nil
}

// checkCounterparty enforces the debt-chain rule. AR/AP lines must declare
// an opposing entity; PE/UR lines may omit it when they are a user's own
// asset/liability conversion. When present the reference must be distinct
// from both legs and must exist.
func checkCounterparty(i int, ln Line, debit, credit *Account, view EntityView) []Violation {
	required := (debit != nil && RequiresCounterparty(debit.SubType)) ||
		(credit != nil && RequiresCounterparty(credit.SubType))

	if ln.CounterpartyEntityID == nil {
		if required {
			return []Violation{{
				Line: i, Kind: ViolationMissingCounterparty,
				Description: "AR/AP line requires a counterparty_entity_id",
			}}
		}
		return nil
	}

	cp := *ln.CounterpartyEntityID
	if cp == ln.DebitEntityID || cp == ln.CreditEntityID {
		return []Violation{{
			Line: i, Kind: ViolationBadCounterparty,
			Description: fmt.Sprintf("counterparty entity %d is self-referential", cp),
		}}
	}
	if _, ok := view.Account(cp); !ok {
		return []Violation{{
			Line: i, Kind: ViolationBadCounterparty,
			Description: fmt.Sprintf("counterparty entity %d does not exist", cp),
		}}
	}
	return nil
}
