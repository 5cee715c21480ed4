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

type ToolboxTalkHandler struct {
	talkService *service.ToolboxTalkService
	validate    *validator.Validate
}

func NewToolboxTalkHandler(talkService *service.ToolboxTalkService) *ToolboxTalkHandler {
	return &ToolboxTalkHandler{
		talkService: talkService,
		validate:    validator.New(),
	}
}

func (h *ToolboxTalkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.CreateToolboxTalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	talk, err := h.talkService.Create(userID, &req)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, talk)
}

func (h *ToolboxTalkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if siteID := r.URL.Query().Get("site_id"); siteID != "" {
		talks, err := h.talkService.ListBySite(siteID)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, talks)
		return
	}

	talks, err := h.talkService.List(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, talks)
}

func (h *ToolboxTalkHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	talk, err := h.talkService.GetByID(userID, id)
	if err != nil {
		response.NotFound(w, "toolbox talk not found")
		return
	}

	response.JSON(w, http.StatusOK, talk)
}

func (h *ToolboxTalkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	var req domain.UpdateToolboxTalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	talk, err := h.talkService.Update(userID, id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, talk)
}

func (h *ToolboxTalkHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	reminders, err := h.talkService.ListReminders(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, reminders)
}
