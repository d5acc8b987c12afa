// Package api implements the REST surface (spec.md §6) over the fleet
// control plane's components: a thin translation layer from HTTP to
// component method calls and back to JSON, with no business logic of
// its own. Grounded on wisbric-nightowl/internal/httpserver/server.go's
// chi-router shape; replaces the teacher's grpc+mTLS pkg/api entirely
// (see DESIGN.md).
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/autobot/fleetctl/pkg/broadcast"
	"github.com/autobot/fleetctl/pkg/cache"
	"github.com/autobot/fleetctl/pkg/metrics"
	"github.com/autobot/fleetctl/pkg/orchestrator"
	"github.com/autobot/fleetctl/pkg/playbook"
	"github.com/autobot/fleetctl/pkg/registry"
	"github.com/autobot/fleetctl/pkg/security"
	"github.com/autobot/fleetctl/pkg/storage"
)

// Server bundles every component the REST handlers call into. It
// carries no state of its own beyond these references.
type Server struct {
	store    storage.Store
	registry *registry.Registry
	vault    *security.Vault
	cache    *cache.Manager
	orch     *orchestrator.Orchestrator
	runner   *playbook.Runner
	broker   *broadcast.Broker

	mux *chi.Mux
}

// NewServer wires the router: global middleware, ambient health/ready/
// metrics endpoints, and the domain route groups.
func NewServer(store storage.Store, reg *registry.Registry, vault *security.Vault, cacheMgr *cache.Manager, orch *orchestrator.Orchestrator, runner *playbook.Runner, broker *broadcast.Broker) *Server {
	s := &Server{
		store:    store,
		registry: reg,
		vault:    vault,
		cache:    cacheMgr,
		orch:     orch,
		runner:   runner,
		broker:   broker,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", metrics.HealthHandler())
	r.Get("/readyz", metrics.ReadyHandler())
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/nodes", s.mountNodes)
	r.Route("/sync", s.mountSync)
	r.Route("/schedules", s.mountSchedules)
	r.Route("/playbooks", s.mountPlaybooks)
	r.Route("/credentials", s.mountCredentials)

	s.mux = r
	return s
}

// ServeHTTP satisfies http.Handler so Server can be passed straight to
// http.Server.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts an http.Server bound to addr with the timeouts
// the teacher's own server.go applies to every listener it opens.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return srv.ListenAndServe()
}
</content>
