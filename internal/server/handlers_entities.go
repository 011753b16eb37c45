package server

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/ledger"
)

type balanceResponse struct {
	EntityID   int64           `json:"entity_id"`
	Balance    decimal.Decimal `json:"balance"`
	Recomputed bool            `json:"recomputed"`
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ent, err := s.store.GetEntity(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

func (s *Server) getEntityBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recompute := r.URL.Query().Get("recompute") == "true"

	balance, err := s.engine.EntityBalance(r.Context(), id, recompute)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{EntityID: id, Balance: balance, Recomputed: recompute})
}

func (s *Server) repairEntityBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	balance, err := s.engine.RepairBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{EntityID: id, Balance: balance, Recomputed: true})
}

func (s *Server) getEntityStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	logs, err := s.engine.Statement(r.Context(), id, limit)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if logs == nil {
		logs = []ledger.Log{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) getNetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	counterparty, ok := pathID(w, r, "counterparty")
	if !ok {
		return
	}

	pos, err := s.engine.NetPosition(r.Context(), id, counterparty)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pos)
}
