package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/api/request"
	"github.com/pulseboard/pulseboard/internal/api/response"
	"github.com/pulseboard/pulseboard/internal/core"
	"github.com/pulseboard/pulseboard/internal/model"
)

type Organization struct {
	svc *core.OrganizationService
}

func NewOrganization(services *core.Services) *Organization {
	return &Organization{svc: services.Organization}
}

// List godoc
//
//	@Summary		List organizations
//	@Description	Returns a paginated list of organizations.
//	@Tags			Organizations
//	@Security		ApiKeyAuth
//	@Param			limit query int false "Page size" default(50)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} response.PaginatedResponse{items=[]model.Organization}
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/organizations [get]
func (h *Organization) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	orgs, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(orgs) > 0 {
		nextCursor = orgs[len(orgs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, orgs, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary		Create an organization
//	@Tags			Organizations
//	@Security		ApiKeyAuth
//	@Param			body body request.CreateOrganization true "Organization details"
//	@Success		201 {object} model.Organization
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/organizations [post]
func (h *Organization) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOrganization
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	org := &model.Organization{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Domain:    req.Domain,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.svc.Create(r.Context(), org); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, org)
}

// Get godoc
//
//	@Summary		Get an organization
//	@Tags			Organizations
//	@Security		ApiKeyAuth
//	@Param			id path string true "Organization ID"
//	@Success		200 {object} model.Organization
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/organizations/{id} [get]
func (h *Organization) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, org)
}

// Update godoc
//
//	@Summary		Update an organization
//	@Tags			Organizations
//	@Security		ApiKeyAuth
//	@Param			id path string true "Organization ID"
//	@Param			body body request.UpdateOrganization true "Fields to update"
//	@Success		200 {object} model.Organization
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/organizations/{id} [put]
func (h *Organization) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateOrganization
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	org, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Domain != nil {
		org.Domain = *req.Domain
	}

	if err := h.svc.Update(r.Context(), org); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, org)
}

// Delete godoc
//
//	@Summary		Delete an organization
//	@Description	Deletes the organization and all of its agents.
//	@Tags			Organizations
//	@Security		ApiKeyAuth
//	@Param			id path string true "Organization ID"
//	@Success		204
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/organizations/{id} [delete]
func (h *Organization) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
