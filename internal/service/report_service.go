package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"fieldsafe-sync-server/internal/repository"
)

// ReportService streams CSV exports of a user's own records. Exports are
// owner-scoped like the pull feed.
type ReportService struct {
	inspectionRepo repository.InspectionRepository
	incidentRepo   repository.IncidentRepository
}

func NewReportService(inspectionRepo repository.InspectionRepository, incidentRepo repository.IncidentRepository) *ReportService {
	return &ReportService{
		inspectionRepo: inspectionRepo,
		incidentRepo:   incidentRepo,
	}
}

func (s *ReportService) ExportCSV(w io.Writer, kind, userID string, from, to time.Time) error {
	switch kind {
	case "inspections":
		return s.exportInspections(w, userID, from, to)
	case "incidents":
		return s.exportIncidents(w, userID, from, to)
	default:
		return fmt.Errorf("unknown report kind: %s", kind)
	}
}

func (s *ReportService) exportInspections(w io.Writer, userID string, from, to time.Time) error {
	inspections, err := s.inspectionRepo.List(userID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "site_id", "title", "status", "score", "version", "created_at", "updated_at"}); err != nil {
		return err
	}

	for _, inspection := range inspections {
		if !inRange(inspection.CreatedAt, from, to) {
			continue
		}

		record := []string{
			inspection.ID,
			inspection.SiteID,
			inspection.Title,
			string(inspection.Status),
			strconv.Itoa(inspection.Score),
			strconv.FormatInt(inspection.Version, 10),
			inspection.CreatedAt.Format(time.RFC3339),
			inspection.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func (s *ReportService) exportIncidents(w io.Writer, userID string, from, to time.Time) error {
	incidents, err := s.incidentRepo.List(userID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "site_id", "title", "severity", "status", "occurred_at", "version", "created_at", "updated_at"}); err != nil {
		return err
	}

	for _, incident := range incidents {
		if !inRange(incident.CreatedAt, from, to) {
			continue
		}

		record := []string{
			incident.ID,
			incident.SiteID,
			incident.Title,
			string(incident.Severity),
			string(incident.Status),
			incident.OccurredAt.Format(time.RFC3339),
			strconv.FormatInt(incident.Version, 10),
			incident.CreatedAt.Format(time.RFC3339),
			incident.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
