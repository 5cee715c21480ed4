package handler

import (
	"net/http"

	"fieldsafe-sync-server/internal/middleware"
	"fieldsafe-sync-server/internal/service"
	"fieldsafe-sync-server/pkg/response"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	notifications, err := h.notificationService.ListByUser(userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]

	if err := h.notificationService.MarkRead(userID, id); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "notification marked as read",
	})
}
