package handler

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/api/request"
	"github.com/pulseboard/pulseboard/internal/api/response"
	"github.com/pulseboard/pulseboard/internal/core"
)

type CronLog struct {
	svc *core.CronLogService
}

func NewCronLog(services *core.Services) *CronLog {
	return &CronLog{svc: services.CronLog}
}

// List godoc
//
//	@Summary		List cron log entries
//	@Description	Returns scheduler audit entries, newest first. Filterable by organization, agent and status.
//	@Tags			Cron Logs
//	@Security		ApiKeyAuth
//	@Param			organization_id query string false "Filter by organization"
//	@Param			agent_id query string false "Filter by agent"
//	@Param			status query string false "Filter by status"
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse{items=[]model.CronLogEntry}
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/cron-logs [get]
func (h *CronLog) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)
	filter := core.CronLogFilter{
		OrganizationID: r.URL.Query().Get("organization_id"),
		AgentID:        r.URL.Query().Get("agent_id"),
		Status:         r.URL.Query().Get("status"),
	}

	entries, hasMore, err := h.svc.List(r.Context(), filter, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = entries[len(entries)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, entries, nextCursor, hasMore)
}
