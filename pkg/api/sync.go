package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobot/fleetctl/pkg/log"
)

func (s *Server) mountSync(r chi.Router) {
	r.Post("/run", s.runSync)
}

// syncRunRequest is the manual fan-out request body (spec.md §6
// `POST /sync/run`). Either schedule_id or (node_ids + role) must be
// given; schedule_id takes precedence if both are present.
type syncRunRequest struct {
	ScheduleID string   `json:"schedule_id,omitempty"`
	NodeIDs    []string `json:"node_ids,omitempty"`
	Role       string   `json:"role,omitempty"`
	Restart    bool     `json:"restart,omitempty"`
}

type syncRunResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) runSync(w http.ResponseWriter, r *http.Request) {
	var req syncRunRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	commit, err := s.cache.Ensure(r.Context())
	if err != nil {
		RespondErr(w, err)
		return
	}

	if req.ScheduleID != "" {
		sch, err := s.store.GetSchedule(req.ScheduleID)
		if err != nil {
			RespondErr(w, err)
			return
		}
		ok, msg := s.orch.ExecuteSchedule(r.Context(), sch, commit)
		Respond(w, http.StatusOK, syncRunResponse{Success: ok, Message: msg})
		return
	}

	if len(req.NodeIDs) == 0 || req.Role == "" {
		RespondError(w, http.StatusBadRequest, "validation_failed", "either schedule_id or node_ids+role is required")
		return
	}

	logger := log.WithComponent("api")
	successes, failures := 0, 0
	var lastMessage string
	for _, nodeID := range req.NodeIDs {
		ok, msg := s.orch.SyncNodeRole(r.Context(), nodeID, req.Role, commit, req.Restart)
		lastMessage = msg
		if ok {
			successes++
		} else {
			failures++
			logger.Warn().Str("node_id", nodeID).Str("role", req.Role).Msg(msg)
		}
	}

	switch {
	case successes > 0:
		Respond(w, http.StatusOK, syncRunResponse{Success: true, Message: lastMessage})
	case failures > 0:
		Respond(w, http.StatusOK, syncRunResponse{Success: false, Message: lastMessage})
	default:
		RespondError(w, http.StatusBadRequest, "validation_failed", "node_ids was empty")
	}
}
