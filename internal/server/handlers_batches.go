package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

type batchRequest struct {
	Lines []struct {
		DebitEntityID        int64           `json:"debit_entity_id"`
		CreditEntityID       int64           `json:"credit_entity_id"`
		Amount               decimal.Decimal `json:"amount"`
		CounterpartyEntityID *int64          `json:"counterparty_entity_id,omitempty"`
		CatalogID            *int64          `json:"catalog_id,omitempty"`
		Note                 string          `json:"note,omitempty"`
	} `json:"lines"`
}

type batchResponse struct {
	BatchID string       `json:"batch_id"`
	Lines   []ledger.Log `json:"lines,omitempty"`
}

func (s *Server) postBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	lines := make([]ledger.Line, len(req.Lines))
	for i, ln := range req.Lines {
		lines[i] = ledger.Line{
			DebitEntityID:        ln.DebitEntityID,
			CreditEntityID:       ln.CreditEntityID,
			Amount:               ln.Amount,
			CounterpartyEntityID: ln.CounterpartyEntityID,
			CatalogID:            ln.CatalogID,
			Note:                 ln.Note,
		}
	}

	batchID, err := s.engine.PostBatch(r.Context(), lines)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	logs, err := s.engine.Batch(r.Context(), batchID)
	if err != nil {
		writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID, Lines: logs})
}

func (s *Server) getBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	logs, err := s.engine.Batch(r.Context(), batchID)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{BatchID: batchID, Lines: logs})
}

func (s *Server) reverseBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	reversalID, err := s.engine.ReverseBatch(r.Context(), batchID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	logs, err := s.engine.Batch(r.Context(), reversalID)
	if err != nil {
		writeJSON(w, http.StatusCreated, batchResponse{BatchID: reversalID})
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: reversalID, Lines: logs})
}
