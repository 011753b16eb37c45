package server

import (
	"encoding/json"
	"net/http"

	"github.com/divvyhq/divvy/internal/ledger"
)

type catalogRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

func (s *Server) createCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	node, err := s.store.CreateCatalog(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

type reparentRequest struct {
	ParentID *int64 `json:"parent_id"`
}

func (s *Server) reparentCatalog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req reparentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	node, err := s.store.ReparentCatalog(r.Context(), id, req.ParentID)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.store.ListCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if nodes == nil {
		nodes = []ledger.CatalogNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}
