package service

import (
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/google/uuid"
)

type SiteService struct {
	repo repository.SiteRepository
}

func NewSiteService(repo repository.SiteRepository) *SiteService {
	return &SiteService{repo: repo}
}

func (s *SiteService) Create(userID string, req *domain.CreateSiteRequest) (*domain.Site, error) {
	now := time.Now()
	status := req.Status
	if status == "" {
		status = domain.SiteStatusActive
	}

	site := &domain.Site{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Address:     req.Address,
		Location:    serializeField(req.Location),
		Status:      status,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(site); err != nil {
		return nil, err
	}

	return site, nil
}

func (s *SiteService) List() ([]*domain.Site, error) {
	return s.repo.List()
}

func (s *SiteService) GetByID(id string) (*domain.Site, error) {
	return s.repo.FindByID(id)
}

func (s *SiteService) Update(id string, req *domain.UpdateSiteRequest) (*domain.Site, error) {
	site, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Address != nil {
		site.Address = *req.Address
	}
	if req.Location != nil {
		site.Location = serializeField(req.Location)
	}
	if req.Status != nil {
		site.Status = *req.Status
	}

	site.UpdatedAt = time.Now()

	if err := s.repo.Update(site); err != nil {
		return nil, err
	}

	return site, nil
}
