package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/api/request"
	"github.com/pulseboard/pulseboard/internal/api/response"
	"github.com/pulseboard/pulseboard/internal/core"
	"github.com/pulseboard/pulseboard/internal/model"
)

type Agent struct {
	agents *core.AgentService
	orgs   *core.OrganizationService
}

func NewAgent(services *core.Services) *Agent {
	return &Agent{agents: services.Agent, orgs: services.Organization}
}

// checkSchedule rejects combinations the scheduler cannot act on.
func checkSchedule(frequency string, dayTime, scheduleTime *string) error {
	switch frequency {
	case model.FrequencyDaily:
		if scheduleTime == nil {
			return fmt.Errorf("daily agents require schedule_time")
		}
	case model.FrequencyWeekly, model.FrequencyMonthly:
		if dayTime == nil {
			return fmt.Errorf("%s agents require day_time", frequency)
		}
	}
	return nil
}

// List godoc
//
//	@Summary		List agents for an organization
//	@Tags			Agents
//	@Security		ApiKeyAuth
//	@Param			id path string true "Organization ID"
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse{items=[]model.Agent}
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/organizations/{id}/agents [get]
func (h *Agent) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	pg := request.ParsePagination(r)

	agents, hasMore, err := h.agents.ListByOrganization(r.Context(), orgID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(agents) > 0 {
		nextCursor = agents[len(agents)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, agents, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary		Create an agent
//	@Tags			Agents
//	@Security		ApiKeyAuth
//	@Param			id path string true "Organization ID"
//	@Param			body body request.CreateAgent true "Agent details"
//	@Success		201 {object} model.Agent
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/organizations/{id}/agents [post]
func (h *Agent) Create(w http.ResponseWriter, r *http.Request) {
	orgID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateAgent
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkSchedule(req.Frequency, req.DayTime, req.ScheduleTime); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.orgs.GetByID(r.Context(), orgID); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	now := time.Now()
	agent := &model.Agent{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           req.Name,
		Frequency:      req.Frequency,
		DayTime:        req.DayTime,
		ScheduleTime:   req.ScheduleTime,
		IsAgent:        req.IsAgent,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Active != nil {
		agent.Active = *req.Active
	}

	if err := h.agents.Create(r.Context(), agent); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusCreated, agent)
}

// Get godoc
//
//	@Summary		Get an agent
//	@Tags			Agents
//	@Security		ApiKeyAuth
//	@Param			id path string true "Agent ID"
//	@Success		200 {object} model.Agent
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/agents/{id} [get]
func (h *Agent) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	agent, err := h.agents.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, agent)
}

// Update godoc
//
//	@Summary		Update an agent
//	@Tags			Agents
//	@Security		ApiKeyAuth
//	@Param			id path string true "Agent ID"
//	@Param			body body request.UpdateAgent true "Fields to update"
//	@Success		200 {object} model.Agent
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/agents/{id} [put]
func (h *Agent) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateAgent
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	agent, err := h.agents.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Frequency != nil {
		agent.Frequency = *req.Frequency
	}
	if req.DayTime != nil {
		agent.DayTime = req.DayTime
	}
	if req.ScheduleTime != nil {
		agent.ScheduleTime = req.ScheduleTime
	}
	if req.IsAgent != nil {
		agent.IsAgent = *req.IsAgent
	}
	if req.Active != nil {
		agent.Active = *req.Active
	}

	if err := checkSchedule(agent.Frequency, agent.DayTime, agent.ScheduleTime); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.agents.Update(r.Context(), agent); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, agent)
}

// Delete godoc
//
//	@Summary		Delete an agent
//	@Tags			Agents
//	@Security		ApiKeyAuth
//	@Param			id path string true "Agent ID"
//	@Success		204
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/agents/{id} [delete]
func (h *Agent) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.agents.Delete(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
