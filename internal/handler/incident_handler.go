package handler

import (
	"encoding/json"
	"net/http"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/middleware"
	"fieldsafe-sync-server/internal/service"
	"fieldsafe-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type IncidentHandler struct {
	incidentService *service.IncidentService
	validate        *validator.Validate
}

func NewIncidentHandler(incidentService *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{
		incidentService: incidentService,
		validate:        validator.New(),
	}
}

func (h *IncidentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	incident, err := h.incidentService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, incident)
}

func (h *IncidentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		incidents, err := h.incidentService.ListBySite(siteID)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, incidents)
		return
	}

	incidents, err := h.incidentService.List(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, incidents)
}

func (h *IncidentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	incident, err := h.incidentService.GetByID(userID, id)
	if err != nil {
		response.NotFound(w, "incident not found")
		return
	}

	response.JSON(w, http.StatusOK, incident)
}

func (h *IncidentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	var req domain.UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	incident, err := h.incidentService.Update(userID, id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, incident)
}
