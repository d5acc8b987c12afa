package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autobot/fleetctl/pkg/apperr"
	"github.com/autobot/fleetctl/pkg/schedule"
	"github.com/autobot/fleetctl/pkg/types"
)

func (s *Server) mountSchedules(r chi.Router) {
	r.Get("/", s.listSchedules)
	r.Post("/", s.createSchedule)
	r.Put("/{id}", s.updateSchedule)
	r.Delete("/{id}", s.deleteSchedule)
	r.Post("/validate", s.validateSchedule)
}

func (s *Server) listSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.store.ListSchedules()
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, schedules)
}

type scheduleRequest struct {
	Name             string                `json:"name"`
	CronExpression   string                `json:"cron_expression"`
	Enabled          bool                  `json:"enabled"`
	TargetType       types.TargetType      `json:"target_type"`
	TargetNodes      []string              `json:"target_nodes,omitempty"`
	RestartAfterSync bool                  `json:"restart_after_sync"`
	RestartStrategy  types.RestartStrategy `json:"restart_strategy"`
}

func (s *Server) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if !schedule.ValidateCronExpression(req.CronExpression) {
		RespondError(w, http.StatusBadRequest, "validation_failed", "invalid cron expression")
		return
	}

	now := time.Now()
	nextRun, err := schedule.NextRun(req.CronExpression, now)
	if err != nil {
		RespondErr(w, err)
		return
	}

	sch := &types.Schedule{
		ID:               uuid.New().String(),
		Name:             req.Name,
		CronExpression:   req.CronExpression,
		Enabled:          req.Enabled,
		TargetType:       req.TargetType,
		TargetNodes:      req.TargetNodes,
		RestartAfterSync: req.RestartAfterSync,
		RestartStrategy:  req.RestartStrategy,
		NextRun:          &nextRun,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateSchedule(sch); err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusCreated, sch)
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := s.store.GetSchedule(id)
	if err != nil {
		RespondErr(w, err)
		return
	}

	var req scheduleRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if !schedule.ValidateCronExpression(req.CronExpression) {
		RespondError(w, http.StatusBadRequest, "validation_failed", "invalid cron expression")
		return
	}
	nextRun, err := schedule.NextRun(req.CronExpression, time.Now())
	if err != nil {
		RespondErr(w, err)
		return
	}

	existing.Name = req.Name
	existing.CronExpression = req.CronExpression
	existing.Enabled = req.Enabled
	existing.TargetType = req.TargetType
	existing.TargetNodes = req.TargetNodes
	existing.RestartAfterSync = req.RestartAfterSync
	existing.RestartStrategy = req.RestartStrategy
	existing.NextRun = &nextRun
	existing.UpdatedAt = time.Now()

	if err := s.store.UpdateSchedule(existing); err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, existing)
}

func (s *Server) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteSchedule(id); err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusNoContent, nil)
}

type validateRequest struct {
	Cron string `json:"cron"`
}

type validateResponse struct {
	Valid       bool     `json:"valid"`
	Description string   `json:"description,omitempty"`
	Next5Runs   []string `json:"next_5_runs,omitempty"`
}

func (s *Server) validateSchedule(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if !schedule.ValidateCronExpression(req.Cron) {
		Respond(w, http.StatusOK, validateResponse{Valid: false})
		return
	}

	resp := validateResponse{
		Valid:       true,
		Description: schedule.DescribeCronExpression(req.Cron),
	}
	cursor := time.Now()
	for i := 0; i < 5; i++ {
		next, err := schedule.NextRun(req.Cron, cursor)
		if err != nil {
			RespondErr(w, apperr.ErrValidation)
			return
		}
		resp.Next5Runs = append(resp.Next5Runs, next.Format(time.RFC3339))
		cursor = next
	}
	Respond(w, http.StatusOK, resp)
}
</content>
