package ui

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

// OpsServer is the health and profiling sidecar, kept off the public
// API port so pprof never ships with the main surface.
type OpsServer struct {
	router *chi.Mux
	db     *sqlx.DB
}

// NewOpsServer wires the sidecar routes.
func NewOpsServer(db *sqlx.DB) *OpsServer {
	s := &OpsServer{
		router: chi.NewRouter(),
		db:     db,
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Mount("/debug", middleware.Profiler())
	return s
}

// Handler exposes the router for tests.
func (s *OpsServer) Handler() http.Handler {
	return s.router
}

// Start starts the sidecar server.
func (s *OpsServer) Start(addr string) error {
	log.Printf("Starting ops sidecar on http://%s", addr)
	return http.ListenAndServe(addr, s.router)
}

// handleHealthz pings the database and reports readiness.
func (s *OpsServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		log.Printf("[healthz] Database ping failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
