package server

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

type expenseRequest struct {
	PayerID      int64           `json:"payer_id"`
	Participants []int64         `json:"participants"`
	Total        decimal.Decimal `json:"total"`
	CatalogID    int64           `json:"catalog_id"`
	Note         string          `json:"note,omitempty"`
}

func (s *Server) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batchID, err := s.engine.RecordSharedExpense(r.Context(), req.PayerID, req.Participants, req.Total, req.CatalogID, req.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
}

type settlementRequest struct {
	DebtorID   int64           `json:"debtor_id"`
	CreditorID int64           `json:"creditor_id"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

func (s *Server) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batchID, err := s.engine.RecordSettlement(r.Context(), req.DebtorID, req.CreditorID, req.Amount, req.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
}

type depositRequest struct {
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

func (s *Server) recordDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batchID, err := s.engine.RecordDeposit(r.Context(), req.UserID, req.Amount, req.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
}

func (s *Server) recordPrepayment(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batchID, err := s.engine.RecordPrepayment(r.Context(), req.UserID, req.Amount, req.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
}

type amortizationRequest struct {
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	CatalogID int64           `json:"catalog_id"`
	Note      string          `json:"note,omitempty"`
}

func (s *Server) postAmortization(w http.ResponseWriter, r *http.Request) {
	var req amortizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	batchID, err := s.engine.PostAmortization(r.Context(), req.UserID, req.Amount, req.CatalogID, req.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{BatchID: batchID})
}
