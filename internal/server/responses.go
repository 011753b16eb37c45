package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/divvyhq/divvy/internal/ledger"
)

type errorResponse struct {
	Error      string             `json:"error"`
	Violations []ledger.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeEngineError maps engine errors onto HTTP statuses. Rejected batches
// carry the full violation list in the body so the caller sees every problem
// in one round trip.
func writeEngineError(w http.ResponseWriter, err error) {
	var rejected *ledger.RejectedError
	if errors.As(err, &rejected) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      rejected.Error(),
			Violations: rejected.Violations,
		})
		return
	}
	writeError(w, mapError(err), err.Error())
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrEntityNotFound),
		errors.Is(err, ledger.ErrCatalogNotFound),
		errors.Is(err, ledger.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateUser),
		errors.Is(err, ledger.ErrAlreadyReversed),
		errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrCatalogCycle),
		errors.Is(err, ledger.ErrInvalidSubType),
		errors.Is(err, ledger.ErrTypeSubTypeMismatch),
		errors.Is(err, ledger.ErrNotDebtEntity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
