package service

import (
	"encoding/json"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ApplyOutcome carries the server-assigned identity of one accepted operation.
// Version is zero for unversioned kinds (Site).
type ApplyOutcome struct {
	ServerID  string
	Version   int64
	Timestamp time.Time
}

// OperationApplier validates one client operation against its entity schema
// and applies it to the store. Updates increment the version counter by
// exactly 1 with no expected-version precondition: concurrent edits resolve
// last-write-wins.
type OperationApplier struct {
	siteRepo       repository.SiteRepository
	inspectionRepo repository.InspectionRepository
	incidentRepo   repository.IncidentRepository
	talkRepo       repository.ToolboxTalkRepository
	validate       *validator.Validate
}

func NewOperationApplier(
	siteRepo repository.SiteRepository,
	inspectionRepo repository.InspectionRepository,
	incidentRepo repository.IncidentRepository,
	talkRepo repository.ToolboxTalkRepository,
) *OperationApplier {
	return &OperationApplier{
		siteRepo:       siteRepo,
		inspectionRepo: inspectionRepo,
		incidentRepo:   incidentRepo,
		talkRepo:       talkRepo,
		validate:       validator.New(),
	}
}

func (a *OperationApplier) Apply(opType domain.OpType, entity string, payload json.RawMessage, userID string) (*ApplyOutcome, error) {
	if opType == domain.OpDelete {
		return nil, &UnsupportedOperationError{Entity: entity, OpType: string(opType)}
	}
	if opType != domain.OpCreate && opType != domain.OpUpdate {
		return nil, &UnsupportedOperationError{Entity: entity, OpType: string(opType)}
	}

	switch entity {
	case domain.EntityInspection:
		return a.applyInspection(opType, payload, userID)
	case domain.EntityIncident:
		return a.applyIncident(opType, payload, userID)
	case domain.EntityToolboxTalk:
		return a.applyToolboxTalk(opType, payload, userID)
	case domain.EntitySite:
		return a.applySite(opType, payload, userID)
	default:
		return nil, &UnsupportedOperationError{Entity: entity, OpType: string(opType)}
	}
}

func (a *OperationApplier) applyInspection(opType domain.OpType, payload json.RawMessage, userID string) (*ApplyOutcome, error) {
	var p domain.InspectionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &ValidationError{Reason: "malformed inspection payload"}
	}
	if err := a.validate.Struct(p); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if opType == domain.OpCreate {
		now := time.Now()
		status := p.Status
		if status == "" {
			status = domain.InspectionStatusDraft
		}

		inspection := &domain.Inspection{
			ID:          uuid.New().String(),
			SiteID:      p.SiteID,
			Title:       p.Title,
			Checklist:   serializeField(p.Checklist),
			Status:      status,
			Score:       p.Score,
			Notes:       p.Notes,
			CreatedByID: userID,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}

		if err := a.inspectionRepo.Create(inspection); err != nil {
			return nil, err
		}

		return &ApplyOutcome{ServerID: inspection.ID, Version: 1, Timestamp: now}, nil
	}

	if p.ID == "" {
		return nil, &ValidationError{Reason: "update requires id"}
	}

	inspection, err := a.inspectionRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}

	if p.Title != "" {
		inspection.Title = p.Title
	}
	if p.Checklist != nil {
		inspection.Checklist = serializeField(p.Checklist)
	}
	if p.Status != "" {
		inspection.Status = p.Status
	}
	if p.Score != 0 {
		inspection.Score = p.Score
	}
	if p.Notes != "" {
		inspection.Notes = p.Notes
	}

	inspection.UpdatedAt = time.Now()
	inspection.Version++

	if err := a.inspectionRepo.Update(inspection); err != nil {
		return nil, err
	}

	return &ApplyOutcome{ServerID: inspection.ID, Version: inspection.Version, Timestamp: inspection.UpdatedAt}, nil
}

func (a *OperationApplier) applyIncident(opType domain.OpType, payload json.RawMessage, userID string) (*ApplyOutcome, error) {
	var p domain.IncidentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &ValidationError{Reason: "malformed incident payload"}
	}
	if err := a.validate.Struct(p); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if opType == domain.OpCreate {
		now := time.Now()
		severity := p.Severity
		if severity == "" {
			severity = domain.SeverityMedium
		}
		occurredAt := p.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = now
		}

		incident := &domain.Incident{
			ID:           uuid.New().String(),
			SiteID:       p.SiteID,
			Title:        p.Title,
			Description:  p.Description,
			Severity:     severity,
			Status:       domain.IncidentStatusOpen,
			Location:     serializeField(p.Location),
			ReportedByID: userID,
			OccurredAt:   occurredAt,
			CreatedAt:    now,
			UpdatedAt:    now,
			Version:      1,
		}

		if err := a.incidentRepo.Create(incident); err != nil {
			return nil, err
		}

		return &ApplyOutcome{ServerID: incident.ID, Version: 1, Timestamp: now}, nil
	}

	if p.ID == "" {
		return nil, &ValidationError{Reason: "update requires id"}
	}

	incident, err := a.incidentRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}

	if p.Title != "" {
		incident.Title = p.Title
	}
	if p.Description != "" {
		incident.Description = p.Description
	}
	if p.Severity != "" {
		incident.Severity = p.Severity
	}
	if p.Status != "" {
		incident.Status = p.Status
	}
	if p.Location != nil {
		incident.Location = serializeField(p.Location)
	}

	incident.UpdatedAt = time.Now()
	incident.Version++

	if err := a.incidentRepo.Update(incident); err != nil {
		return nil, err
	}

	return &ApplyOutcome{ServerID: incident.ID, Version: incident.Version, Timestamp: incident.UpdatedAt}, nil
}

func (a *OperationApplier) applyToolboxTalk(opType domain.OpType, payload json.RawMessage, userID string) (*ApplyOutcome, error) {
	var p domain.ToolboxTalkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &ValidationError{Reason: "malformed toolbox talk payload"}
	}
	if err := a.validate.Struct(p); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if opType == domain.OpCreate {
		now := time.Now()

		talk := &domain.ToolboxTalk{
			ID:          uuid.New().String(),
			SiteID:      p.SiteID,
			Topic:       p.Topic,
			Notes:       p.Notes,
			Attendees:   serializeField(p.Attendees),
			ScheduledAt: parseScheduledAt(p.ScheduledAt),
			CreatedByID: userID,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}

		if err := a.talkRepo.Create(talk); err != nil {
			return nil, err
		}

		return &ApplyOutcome{ServerID: talk.ID, Version: 1, Timestamp: now}, nil
	}

	if p.ID == "" {
		return nil, &ValidationError{Reason: "update requires id"}
	}

	talk, err := a.talkRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}

	if p.Topic != "" {
		talk.Topic = p.Topic
	}
	if p.Notes != "" {
		talk.Notes = p.Notes
	}
	if p.Attendees != nil {
		talk.Attendees = serializeField(p.Attendees)
	}
	if p.ScheduledAt != "" {
		if parsed := parseScheduledAt(p.ScheduledAt); parsed != nil {
			talk.ScheduledAt = parsed
		}
	}

	talk.UpdatedAt = time.Now()
	talk.Version++

	if err := a.talkRepo.Update(talk); err != nil {
		return nil, err
	}

	return &ApplyOutcome{ServerID: talk.ID, Version: talk.Version, Timestamp: talk.UpdatedAt}, nil
}

func (a *OperationApplier) applySite(opType domain.OpType, payload json.RawMessage, userID string) (*ApplyOutcome, error) {
	var p domain.SitePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &ValidationError{Reason: "malformed site payload"}
	}
	if err := a.validate.Struct(p); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if opType == domain.OpCreate {
		now := time.Now()
		status := p.Status
		if status == "" {
			status = domain.SiteStatusActive
		}

		site := &domain.Site{
			ID:          uuid.New().String(),
			Name:        p.Name,
			Address:     p.Address,
			Location:    serializeField(p.Location),
			Status:      status,
			CreatedByID: userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := a.siteRepo.Create(site); err != nil {
			return nil, err
		}

		return &ApplyOutcome{ServerID: site.ID, Timestamp: now}, nil
	}

	if p.ID == "" {
		return nil, &ValidationError{Reason: "update requires id"}
	}

	site, err := a.siteRepo.FindByID(p.ID)
	if err != nil {
		return nil, err
	}

	if p.Name != "" {
		site.Name = p.Name
	}
	if p.Address != "" {
		site.Address = p.Address
	}
	if p.Location != nil {
		site.Location = serializeField(p.Location)
	}
	if p.Status != "" {
		site.Status = p.Status
	}

	site.UpdatedAt = time.Now()

	if err := a.siteRepo.Update(site); err != nil {
		return nil, err
	}

	return &ApplyOutcome{ServerID: site.ID, Timestamp: site.UpdatedAt}, nil
}

// serializeField stores nested free-form values (checklist items, coordinates,
// attendee lists) as their JSON text.
func serializeField(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// parseScheduledAt tolerates the truncated timestamps some clients emit
// (no seconds, no zone). A raw value that still fails after repair is
// dropped rather than rejecting the operation.
func parseScheduledAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}

	if t, err := time.Parse(time.RFC3339, raw+":00Z"); err == nil {
		return &t
	}

	return nil
}
