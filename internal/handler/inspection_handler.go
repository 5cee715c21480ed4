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

type InspectionHandler struct {
	inspectionService *service.InspectionService
	validate          *validator.Validate
}

func NewInspectionHandler(inspectionService *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{
		inspectionService: inspectionService,
		validate:          validator.New(),
	}
}

func (h *InspectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.CreateInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	inspection, err := h.inspectionService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, inspection)
}

func (h *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		inspections, err := h.inspectionService.ListBySite(siteID)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, inspections)
		return
	}

	inspections, err := h.inspectionService.List(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, inspections)
}

func (h *InspectionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	inspection, err := h.inspectionService.GetByID(userID, id)
	if err != nil {
		response.NotFound(w, "inspection not found")
		return
	}

	response.JSON(w, http.StatusOK, inspection)
}

func (h *InspectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	var req domain.UpdateInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	inspection, err := h.inspectionService.Update(userID, id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, inspection)
}
