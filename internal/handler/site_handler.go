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

type SiteHandler struct {
	siteService *service.SiteService
	validate    *validator.Validate
}

func NewSiteHandler(siteService *service.SiteService) *SiteHandler {
	return &SiteHandler{
		siteService: siteService,
		validate:    validator.New(),
	}
}

func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	site, err := h.siteService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, site)
}

func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.siteService.List()
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, sites)
}

func (h *SiteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	site, err := h.siteService.GetByID(id)
	if err != nil {
		response.NotFound(w, "site not found")
		return
	}

	response.JSON(w, http.StatusOK, site)
}

func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.UpdateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	site, err := h.siteService.Update(id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, site)
}
