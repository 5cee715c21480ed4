package service

import (
	"log"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/google/uuid"
)

// AuditService appends immutable audit entries. It is a best-effort side
// channel: a failed append is logged and never fails the enclosing request.
type AuditService struct {
	repo repository.AuditLogRepository
}

func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(userID, action, entity, entityID string, payload map[string]interface{}) {
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(entry); err != nil {
		log.Printf("failed to append audit entry (%s %s/%s): %v", action, entity, entityID, err)
	}
}

func (s *AuditService) ListRecent(limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRecent(limit)
}

func (s *AuditService) ListByUser(userID string) ([]*domain.AuditLog, error) {
	return s.repo.ListByUser(userID)
}
