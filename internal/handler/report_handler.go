package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fieldsafe-sync-server/internal/middleware"
	"fieldsafe-sync-server/internal/service"
	"fieldsafe-sync-server/pkg/response"
)

type ReportHandler struct {
	reportService *service.ReportService
	auditService  *service.AuditService
}

func NewReportHandler(reportService *service.ReportService, auditService *service.AuditService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		auditService:  auditService,
	}
}

// ExportCSV streams the caller's records as a CSV download.
// kind selects the dataset; from/to bound CreatedAt when present.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "inspections"
	}

	var from, to time.Time
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		var err error
		from, err = time.Parse(time.RFC3339, fromParam)
		if err != nil {
			response.BadRequest(w, "invalid from parameter")
			return
		}
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		var err error
		to, err = time.Parse(time.RFC3339, toParam)
		if err != nil {
			response.BadRequest(w, "invalid to parameter")
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_export.csv", kind))

	if err := h.reportService.ExportCSV(w, kind, userID, from, to); err != nil {
		// Headers may already be written; log-and-abort is the best we can do.
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *ReportHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			response.BadRequest(w, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	if targetUser := r.URL.Query().Get("user_id"); targetUser != "" {
		logs, err := h.auditService.ListByUser(targetUser)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.JSON(w, http.StatusOK, logs)
		return
	}

	logs, err := h.auditService.ListRecent(limit)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, logs)
}
