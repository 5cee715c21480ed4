package service

import (
	"errors"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/google/uuid"
)

type InspectionService struct {
	repo repository.InspectionRepository
}

func NewInspectionService(repo repository.InspectionRepository) *InspectionService {
	return &InspectionService{repo: repo}
}

func (s *InspectionService) Create(userID string, req *domain.CreateInspectionRequest) (*domain.Inspection, error) {
	now := time.Now()
	status := req.Status
	if status == "" {
		status = domain.InspectionStatusDraft
	}

	inspection := &domain.Inspection{
		ID:          uuid.New().String(),
		SiteID:      req.SiteID,
		Title:       req.Title,
		Checklist:   serializeField(req.Checklist),
		Status:      status,
		Score:       req.Score,
		Notes:       req.Notes,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := s.repo.Create(inspection); err != nil {
		return nil, err
	}

	return inspection, nil
}

func (s *InspectionService) List(userID string) ([]*domain.Inspection, error) {
	return s.repo.List(userID)
}

func (s *InspectionService) ListBySite(siteID string) ([]*domain.Inspection, error) {
	return s.repo.ListBySite(siteID)
}

func (s *InspectionService) GetByID(userID, id string) (*domain.Inspection, error) {
	inspection, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if inspection.CreatedByID != userID {
		return nil, errors.New("unauthorized: inspection does not belong to user")
	}

	return inspection, nil
}

func (s *InspectionService) Update(userID, id string, req *domain.UpdateInspectionRequest) (*domain.Inspection, error) {
	inspection, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if inspection.CreatedByID != userID {
		return nil, errors.New("unauthorized: inspection does not belong to user")
	}

	if req.Title != nil {
		inspection.Title = *req.Title
	}
	if req.Checklist != nil {
		inspection.Checklist = serializeField(req.Checklist)
	}
	if req.Status != nil {
		inspection.Status = *req.Status
	}
	if req.Score != nil {
		inspection.Score = *req.Score
	}
	if req.Notes != nil {
		inspection.Notes = *req.Notes
	}

	inspection.UpdatedAt = time.Now()
	inspection.Version++

	if err := s.repo.Update(inspection); err != nil {
		return nil, err
	}

	return inspection, nil
}
