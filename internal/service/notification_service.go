package service

import (
	"fmt"
	"log"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"
	"fieldsafe-sync-server/internal/websocket"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo         repository.NotificationRepository
	userRepo     repository.UserRepository
	incidentRepo repository.IncidentRepository
	wsManager    *websocket.Manager
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	incidentRepo repository.IncidentRepository,
	wsManager *websocket.Manager,
) *NotificationService {
	return &NotificationService{
		repo:         repo,
		userRepo:     userRepo,
		incidentRepo: incidentRepo,
		wsManager:    wsManager,
	}
}

// IncidentReported fans out a notification to every supervisor when a new
// incident lands. Best-effort: failures are logged, never propagated to the
// reporting operation.
func (s *NotificationService) IncidentReported(reporterID, incidentID string) {
	incident, err := s.incidentRepo.FindByID(incidentID)
	if err != nil {
		log.Printf("notification skipped, incident %s not found: %v", incidentID, err)
		return
	}

	supervisors, err := s.userRepo.ListByRole(domain.RoleSupervisor)
	if err != nil {
		log.Printf("notification skipped, failed to list supervisors: %v", err)
		return
	}

	for _, supervisor := range supervisors {
		if supervisor.ID == reporterID {
			continue
		}

		notification := &domain.Notification{
			ID:         uuid.New().String(),
			UserID:     supervisor.ID,
			Type:       domain.NotificationIncidentReported,
			Title:      fmt.Sprintf("New %s incident: %s", incident.Severity, incident.Title),
			Body:       incident.Description,
			EntityKind: domain.EntityIncident,
			EntityID:   incident.ID,
			CreatedAt:  time.Now(),
		}

		if err := s.repo.Create(notification); err != nil {
			log.Printf("failed to create notification for user %s: %v", supervisor.ID, err)
			continue
		}

		s.broadcast(notification)
	}
}

func (s *NotificationService) TalkScheduled(talk *domain.ToolboxTalk) {
	if talk.ScheduledAt == nil {
		return
	}

	notification := &domain.Notification{
		ID:         uuid.New().String(),
		UserID:     talk.CreatedByID,
		Type:       domain.NotificationTalkScheduled,
		Title:      fmt.Sprintf("Toolbox talk scheduled: %s", talk.Topic),
		EntityKind: domain.EntityToolboxTalk,
		EntityID:   talk.ID,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(notification); err != nil {
		log.Printf("failed to create talk notification: %v", err)
		return
	}

	s.broadcast(notification)
}

func (s *NotificationService) broadcast(notification *domain.Notification) {
	if s.wsManager == nil {
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeNotification, &websocket.NotificationPayload{
		NotificationID: notification.ID,
		Type:           string(notification.Type),
		Title:          notification.Title,
		EntityKind:     notification.EntityKind,
		EntityID:       notification.EntityID,
	})
	if err != nil {
		return
	}

	s.wsManager.BroadcastToUser(notification.UserID, msg, "")
}

func (s *NotificationService) ListByUser(userID string) ([]*domain.Notification, error) {
	return s.repo.ListByUser(userID)
}

func (s *NotificationService) MarkRead(userID, id string) error {
	notifications, err := s.repo.ListByUser(userID)
	if err != nil {
		return err
	}

	for _, n := range notifications {
		if n.ID == id {
			return s.repo.MarkRead(id)
		}
	}

	return fmt.Errorf("notification not found")
}
