package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobot/fleetctl/pkg/types"
)

func (s *Server) mountNodes(r chi.Router) {
	r.Get("/", s.listNodes)
	r.Post("/{id}/role/{name}", s.assignRole)
	r.Delete("/{id}/role/{name}", s.unassignRole)
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.registry.ListNodes()
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, nodes)
}

func (s *Server) assignRole(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "id")
	roleName := chi.URLParam(r, "name")

	nr, err := s.registry.AssignRole(nodeID, roleName, types.AssignmentManual)
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusCreated, nr)
}

func (s *Server) unassignRole(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "id")
	roleName := chi.URLParam(r, "name")

	if err := s.registry.UnassignRole(nodeID, roleName); err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusNoContent, nil)
}
</content>
