package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"fieldsafe-sync-server/internal/domain"
)

func TestReportService_ExportInspectionsCSV(t *testing.T) {
	inspectionRepo := newMockInspectionRepo()
	incidentRepo := newMockIncidentRepo()
	service := NewReportService(inspectionRepo, incidentRepo)

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	inspectionRepo.Create(&domain.Inspection{
		ID: "i-1", SiteID: "site-1", Title: "Scaffolding", Status: domain.InspectionStatusApproved,
		Score: 92, Version: 3, CreatedByID: "user1", CreatedAt: base, UpdatedAt: base,
	})
	inspectionRepo.Create(&domain.Inspection{
		ID: "i-2", SiteID: "site-1", Title: "Too old", Status: domain.InspectionStatusDraft,
		CreatedByID: "user1", CreatedAt: base.Add(-48 * time.Hour), UpdatedAt: base,
	})
	inspectionRepo.Create(&domain.Inspection{
		ID: "i-3", SiteID: "site-2", Title: "Not mine", Status: domain.InspectionStatusDraft,
		CreatedByID: "user2", CreatedAt: base, UpdatedAt: base,
	})

	var buf bytes.Buffer
	err := service.ExportCSV(&buf, "inspections", "user1", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	if records[0][0] != "id" {
		t.Errorf("expected header row, got %v", records[0])
	}
	if records[1][0] != "i-1" || records[1][4] != "92" {
		t.Errorf("unexpected row: %v", records[1])
	}
}

func TestReportService_ExportUnknownKind(t *testing.T) {
	service := NewReportService(newMockInspectionRepo(), newMockIncidentRepo())

	var buf bytes.Buffer
	if err := service.ExportCSV(&buf, "payroll", "user1", time.Time{}, time.Time{}); err == nil {
		t.Error("expected error for unknown report kind")
	}
}

func TestReportService_ExportIncidentsCSV(t *testing.T) {
	service := NewReportService(newMockInspectionRepo(), newMockIncidentRepo())

	var buf bytes.Buffer
	if err := service.ExportCSV(&buf, "incidents", "user1", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only for empty store, got %d records", len(records))
	}
	if records[0][3] != "severity" {
		t.Errorf("unexpected incident header: %v", records[0])
	}
}
