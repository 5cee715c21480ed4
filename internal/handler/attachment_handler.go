package handler

import (
	"encoding/json"
	"net/http"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/middleware"
	"fieldsafe-sync-server/internal/service"
	"fieldsafe-sync-server/pkg/response"

	"github.com/gorilla/mux"
)

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
}

func NewAttachmentHandler(attachmentService *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

func (h *AttachmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	attachment, err := h.attachmentService.Get(id)
	if err != nil {
		response.NotFound(w, "attachment not found")
		return
	}

	response.JSON(w, http.StatusOK, attachment)
}

func (h *AttachmentHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	entityID := r.URL.Query().Get("entity_id")
	if kind == "" || entityID == "" {
		response.BadRequest(w, "kind and entity_id are required")
		return
	}

	attachments, err := h.attachmentService.ListByEntity(kind, entityID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, attachments)
}

// MarkUploaded confirms that the client finished uploading the blob the
// placeholder was issued for.
func (h *AttachmentHandler) MarkUploaded(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req domain.MarkUploadedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	attachment, err := h.attachmentService.MarkUploaded(id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, attachment)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.attachmentService.Delete(userID, id); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "attachment deleted",
	})
}
