package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountPlaybooks(r chi.Router) {
	r.Post("/{name}/run", s.runPlaybook)
	r.Get("/runs/{run_id}", s.getPlaybookRun)
}

type playbookRunRequest struct {
	Targets   []string          `json:"targets,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	ExtraVars map[string]string `json:"extra_vars,omitempty"`
	CheckMode bool              `json:"check_mode,omitempty"`
}

type playbookRunResponse struct {
	RunID string `json:"run_id"`
}

func (s *Server) runPlaybook(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req playbookRunRequest
	if r.ContentLength > 0 {
		if err := Decode(r, &req); err != nil {
			RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
	}

	run, err := s.runner.StartAsync(name, req.Targets, req.Tags, req.ExtraVars, req.CheckMode)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	Respond(w, http.StatusAccepted, playbookRunResponse{RunID: run.RunID})
}

func (s *Server) getPlaybookRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")

	run, ok := s.runner.Get(runID)
	if !ok {
		RespondError(w, http.StatusNotFound, "not_found", "run "+runID+" not found")
		return
	}
	Respond(w, http.StatusOK, run)
}
</content>
