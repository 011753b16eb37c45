package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrEntityNotFound      = errors.New("account entity not found")
	ErrCatalogNotFound     = errors.New("expense catalog not found")
	ErrCatalogCycle        = errors.New("expense catalog parent would create a cycle")
	ErrInvalidSubType      = errors.New("unknown account sub-type")
	ErrTypeSubTypeMismatch = errors.New("account type does not match sub-type")
	ErrBatchNotFound       = errors.New("transaction batch not found")
	ErrNotDebtEntity       = errors.New("entity does not track debt positions")
	ErrAlreadyReversed     = errors.New("batch has already been reversed")
	ErrConflict            = errors.New("concurrent update conflict, retry the batch")
)

// RejectedError carries the full violation list from batch validation.
// Commit never proceeds while it is non-empty.
type RejectedError struct {
	Violations []Violation
}

func (e *RejectedError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("batch rejected: %s", strings.Join(msgs, "; "))
}
