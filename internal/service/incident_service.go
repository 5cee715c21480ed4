package service

import (
	"errors"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/google/uuid"
)

type IncidentService struct {
	repo          repository.IncidentRepository
	notifications *NotificationService
}

func NewIncidentService(repo repository.IncidentRepository, notifications *NotificationService) *IncidentService {
	return &IncidentService{
		repo:          repo,
		notifications: notifications,
	}
}

func (s *IncidentService) Create(userID string, req *domain.CreateIncidentRequest) (*domain.Incident, error) {
	now := time.Now()
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	incident := &domain.Incident{
		ID:           uuid.New().String(),
		SiteID:       req.SiteID,
		Title:        req.Title,
		Description:  req.Description,
		Severity:     req.Severity,
		Status:       domain.IncidentStatusOpen,
		Location:     serializeField(req.Location),
		ReportedByID: userID,
		OccurredAt:   occurredAt,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}

	if err := s.repo.Create(incident); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.IncidentReported(userID, incident.ID)
	}

	return incident, nil
}

func (s *IncidentService) List(userID string) ([]*domain.Incident, error) {
	return s.repo.List(userID)
}

func (s *IncidentService) ListBySite(siteID string) ([]*domain.Incident, error) {
	return s.repo.ListBySite(siteID)
}

func (s *IncidentService) GetByID(userID, id string) (*domain.Incident, error) {
	incident, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if incident.ReportedByID != userID {
		return nil, errors.New("unauthorized: incident does not belong to user")
	}

	return incident, nil
}

func (s *IncidentService) Update(userID, id string, req *domain.UpdateIncidentRequest) (*domain.Incident, error) {
	incident, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if incident.ReportedByID != userID {
		return nil, errors.New("unauthorized: incident does not belong to user")
	}

	if req.Title != nil {
		incident.Title = *req.Title
	}
	if req.Description != nil {
		incident.Description = *req.Description
	}
	if req.Severity != nil {
		incident.Severity = *req.Severity
	}
	if req.Status != nil {
		incident.Status = *req.Status
	}
	if req.Location != nil {
		incident.Location = serializeField(req.Location)
	}

	incident.UpdatedAt = time.Now()
	incident.Version++

	if err := s.repo.Update(incident); err != nil {
		return nil, err
	}

	return incident, nil
}
