package service

import (
	"encoding/json"
	"errors"
	"testing"

	"fieldsafe-sync-server/internal/domain"
)

func newTestApplier() (*OperationApplier, *mockSiteRepo, *mockInspectionRepo, *mockIncidentRepo, *mockTalkRepo) {
	siteRepo := newMockSiteRepo()
	inspectionRepo := newMockInspectionRepo()
	incidentRepo := newMockIncidentRepo()
	talkRepo := newMockTalkRepo()
	return NewOperationApplier(siteRepo, inspectionRepo, incidentRepo, talkRepo), siteRepo, inspectionRepo, incidentRepo, talkRepo
}

func TestOperationApplier_RejectsDelete(t *testing.T) {
	applier, _, _, _, _ := newTestApplier()

	_, err := applier.Apply(domain.OpDelete, domain.EntityInspection, json.RawMessage(`{"id":"x"}`), "user1")
	if err == nil {
		t.Fatal("expected error for delete operation")
	}

	var unsupported *UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedOperationError, got %T", err)
	}
}

func TestOperationApplier_RejectsUnknownEntity(t *testing.T) {
	applier, _, _, _, _ := newTestApplier()

	_, err := applier.Apply(domain.OpCreate, "Widget", json.RawMessage(`{}`), "user1")
	if err == nil {
		t.Fatal("expected error for unknown entity kind")
	}

	var unsupported *UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Errorf("expected UnsupportedOperationError, got %T", err)
	}
}

func TestOperationApplier_IncidentDefaults(t *testing.T) {
	applier, _, _, incidentRepo, _ := newTestApplier()

	payload := json.RawMessage(`{"site_id":"site-1","title":"Dropped load"}`)
	outcome, err := applier.Apply(domain.OpCreate, domain.EntityIncident, payload, "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	incident, _ := incidentRepo.FindByID(outcome.ServerID)
	if incident.Severity != domain.SeverityMedium {
		t.Errorf("expected default severity medium, got %s", incident.Severity)
	}
	if incident.Status != domain.IncidentStatusOpen {
		t.Errorf("expected default status open, got %s", incident.Status)
	}
	if incident.OccurredAt.IsZero() {
		t.Error("expected occurred_at to default to apply time")
	}
	if incident.ReportedByID != "user1" {
		t.Errorf("expected reporter user1, got %s", incident.ReportedByID)
	}
}

func TestOperationApplier_InspectionDefaultsToDraft(t *testing.T) {
	applier, _, inspectionRepo, _, _ := newTestApplier()

	outcome, err := applier.Apply(domain.OpCreate, domain.EntityInspection, json.RawMessage(`{"site_id":"site-1","title":"T"}`), "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	inspection, _ := inspectionRepo.FindByID(outcome.ServerID)
	if inspection.Status != domain.InspectionStatusDraft {
		t.Errorf("expected draft status, got %s", inspection.Status)
	}
	if inspection.Version != 1 {
		t.Errorf("expected version 1, got %d", inspection.Version)
	}
}

func TestOperationApplier_InvalidEnumRejected(t *testing.T) {
	applier, _, _, _, _ := newTestApplier()

	payload := json.RawMessage(`{"site_id":"site-1","title":"T","severity":"catastrophic"}`)
	_, err := applier.Apply(domain.OpCreate, domain.EntityIncident, payload, "user1")
	if err == nil {
		t.Fatal("expected validation error for unknown severity")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestOperationApplier_UpdateRequiresID(t *testing.T) {
	applier, _, _, _, _ := newTestApplier()

	_, err := applier.Apply(domain.OpUpdate, domain.EntityInspection, json.RawMessage(`{"title":"New"}`), "user1")
	if err == nil {
		t.Fatal("expected error for update without id")
	}
}

func TestOperationApplier_UpdateUnknownIDFails(t *testing.T) {
	applier, _, _, _, _ := newTestApplier()

	_, err := applier.Apply(domain.OpUpdate, domain.EntityInspection, json.RawMessage(`{"id":"ghost","title":"New"}`), "user1")
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestOperationApplier_SiteIsUnversioned(t *testing.T) {
	applier, siteRepo, _, _, _ := newTestApplier()

	outcome, err := applier.Apply(domain.OpCreate, domain.EntitySite, json.RawMessage(`{"name":"North Yard"}`), "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Version != 0 {
		t.Errorf("expected no version for site, got %d", outcome.Version)
	}

	update, _ := json.Marshal(map[string]interface{}{"id": outcome.ServerID, "status": "paused"})
	outcome, err = applier.Apply(domain.OpUpdate, domain.EntitySite, update, "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Version != 0 {
		t.Errorf("expected no version after site update, got %d", outcome.Version)
	}

	site, _ := siteRepo.FindByID(outcome.ServerID)
	if site.Status != domain.SiteStatusPaused {
		t.Errorf("expected paused status, got %s", site.Status)
	}
}

func TestOperationApplier_ToolboxTalkScheduledAtRepair(t *testing.T) {
	applier, _, _, _, talkRepo := newTestApplier()

	// Truncated timestamp, no seconds and no zone.
	payload := json.RawMessage(`{"site_id":"site-1","topic":"Fall protection","scheduled_at":"2026-10-27T11:59"}`)
	outcome, err := applier.Apply(domain.OpCreate, domain.EntityToolboxTalk, payload, "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	talk, _ := talkRepo.FindByID(outcome.ServerID)
	if talk.ScheduledAt == nil {
		t.Fatal("expected repaired scheduled_at to be set")
	}
	if talk.ScheduledAt.Minute() != 59 {
		t.Errorf("unexpected scheduled time: %v", talk.ScheduledAt)
	}
}

func TestOperationApplier_ToolboxTalkBadScheduledAtDropped(t *testing.T) {
	applier, _, _, _, talkRepo := newTestApplier()

	payload := json.RawMessage(`{"site_id":"site-1","topic":"Lockout tagout","scheduled_at":"not-a-date"}`)
	outcome, err := applier.Apply(domain.OpCreate, domain.EntityToolboxTalk, payload, "user1")
	if err != nil {
		t.Fatalf("expected operation accepted with dropped timestamp, got %v", err)
	}

	talk, _ := talkRepo.FindByID(outcome.ServerID)
	if talk.ScheduledAt != nil {
		t.Errorf("expected unparseable scheduled_at dropped, got %v", talk.ScheduledAt)
	}
}

func TestOperationApplier_UpdateOverwritesOnlyProvidedFields(t *testing.T) {
	applier, _, inspectionRepo, _, _ := newTestApplier()

	create := json.RawMessage(`{"site_id":"site-1","title":"Original","notes":"keep me","score":80}`)
	outcome, err := applier.Apply(domain.OpCreate, domain.EntityInspection, create, "user1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	update, _ := json.Marshal(map[string]interface{}{"id": outcome.ServerID, "title": "Renamed"})
	if _, err := applier.Apply(domain.OpUpdate, domain.EntityInspection, update, "user1"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	inspection, _ := inspectionRepo.FindByID(outcome.ServerID)
	if inspection.Title != "Renamed" {
		t.Errorf("expected renamed title, got %q", inspection.Title)
	}
	if inspection.Notes != "keep me" {
		t.Errorf("expected untouched notes, got %q", inspection.Notes)
	}
	if inspection.Score != 80 {
		t.Errorf("expected untouched score, got %d", inspection.Score)
	}
}

func TestParseScheduledAt(t *testing.T) {
	if parseScheduledAt("") != nil {
		t.Error("expected nil for empty input")
	}
	if parseScheduledAt("2026-10-27T11:59:00Z") == nil {
		t.Error("expected valid RFC3339 to parse")
	}
	if parseScheduledAt("2026-10-27T11:59") == nil {
		t.Error("expected truncated timestamp to be repaired")
	}
	if parseScheduledAt("definitely not a date") != nil {
		t.Error("expected garbage input to be dropped")
	}
}
