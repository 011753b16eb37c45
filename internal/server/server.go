package server

import (
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/divvyhq/divvy/internal/engine"
	"github.com/divvyhq/divvy/internal/store"
)

type Server struct {
	store  *store.Store
	engine *engine.Engine
	router chi.Router
	addr   string
}

func New(st *store.Store, eng *engine.Engine, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{store: st, engine: eng, router: r, addr: addr}

	r.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Post("/users", s.createUser)
		r.Get("/users", s.listUsers)
		r.Get("/users/{id}", s.getUser)
		r.Patch("/users/{id}", s.renameUser)
		r.Get("/users/{id}/entities", s.listUserEntities)
		r.Get("/users/{id}/balance-sheet", s.balanceSheet)

		// Account entities
		r.Get("/entities/{id}", s.getEntity)
		r.Get("/entities/{id}/balance", s.getEntityBalance)
		r.Post("/entities/{id}/repair", s.repairEntityBalance)
		r.Get("/entities/{id}/statement", s.getEntityStatement)
		r.Get("/entities/{id}/position/{counterparty}", s.getNetPosition)

		// Batches
		r.Post("/batches", s.postBatch)
		r.Get("/batches/{id}", s.getBatch)
		r.Post("/batches/{id}/reverse", s.reverseBatch)

		// Canonical postings
		r.Post("/expenses", s.recordExpense)
		r.Post("/settlements", s.recordSettlement)
		r.Post("/deposits", s.recordDeposit)
		r.Post("/prepayments", s.recordPrepayment)
		r.Post("/amortizations", s.postAmortization)

		// Expense catalog
		r.Post("/catalog", s.createCatalog)
		r.Get("/catalog", s.listCatalog)
		r.Patch("/catalog/{id}", s.reparentCatalog)

		// Account chart reference
		r.Get("/accounts", s.listAccounts)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	log.Printf("divvy server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	log.Printf("divvy server listening on %s", ln.Addr())
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
