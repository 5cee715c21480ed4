package service

import (
	"errors"
	"log"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"

	"github.com/google/uuid"
)

// reminderLead is how far ahead of a scheduled talk its reminder fires.
const reminderLead = time.Hour

type ToolboxTalkService struct {
	repo          repository.ToolboxTalkRepository
	reminderRepo  repository.ReminderRepository
	notifications *NotificationService
}

func NewToolboxTalkService(
	repo repository.ToolboxTalkRepository,
	reminderRepo repository.ReminderRepository,
	notifications *NotificationService,
) *ToolboxTalkService {
	return &ToolboxTalkService{
		repo:          repo,
		reminderRepo:  reminderRepo,
		notifications: notifications,
	}
}

func (s *ToolboxTalkService) Create(userID string, req *domain.CreateToolboxTalkRequest) (*domain.ToolboxTalk, error) {
	now := time.Now()

	talk := &domain.ToolboxTalk{
		ID:          uuid.New().String(),
		SiteID:      req.SiteID,
		Topic:       req.Topic,
		Notes:       req.Notes,
		Attendees:   serializeField(req.Attendees),
		ScheduledAt: parseScheduledAt(req.ScheduledAt),
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := s.repo.Create(talk); err != nil {
		return nil, err
	}

	s.scheduleReminder(talk)

	if s.notifications != nil {
		s.notifications.TalkScheduled(talk)
	}

	return talk, nil
}

func (s *ToolboxTalkService) scheduleReminder(talk *domain.ToolboxTalk) {
	if s.reminderRepo == nil || talk.ScheduledAt == nil {
		return
	}

	remindAt := talk.ScheduledAt.Add(-reminderLead)
	if remindAt.Before(time.Now()) {
		return
	}

	reminder := &domain.Reminder{
		ID:        uuid.New().String(),
		UserID:    talk.CreatedByID,
		TalkID:    talk.ID,
		RemindAt:  remindAt,
		CreatedAt: time.Now(),
	}

	if err := s.reminderRepo.Create(reminder); err != nil {
		log.Printf("failed to create reminder for talk %s: %v", talk.ID, err)
	}
}

func (s *ToolboxTalkService) List(userID string) ([]*domain.ToolboxTalk, error) {
	return s.repo.List(userID)
}

func (s *ToolboxTalkService) ListBySite(siteID string) ([]*domain.ToolboxTalk, error) {
	return s.repo.ListBySite(siteID)
}

func (s *ToolboxTalkService) GetByID(userID, id string) (*domain.ToolboxTalk, error) {
	talk, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if talk.CreatedByID != userID {
		return nil, errors.New("unauthorized: toolbox talk does not belong to user")
	}

	return talk, nil
}

func (s *ToolboxTalkService) Update(userID, id string, req *domain.UpdateToolboxTalkRequest) (*domain.ToolboxTalk, error) {
	talk, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if talk.CreatedByID != userID {
		return nil, errors.New("unauthorized: toolbox talk does not belong to user")
	}

	if req.Topic != nil {
		talk.Topic = *req.Topic
	}
	if req.Notes != nil {
		talk.Notes = *req.Notes
	}
	if req.Attendees != nil {
		talk.Attendees = serializeField(req.Attendees)
	}
	if req.ScheduledAt != nil {
		if parsed := parseScheduledAt(*req.ScheduledAt); parsed != nil {
			talk.ScheduledAt = parsed
		}
	}

	talk.UpdatedAt = time.Now()
	talk.Version++

	if err := s.repo.Update(talk); err != nil {
		return nil, err
	}

	return talk, nil
}

func (s *ToolboxTalkService) ListReminders(userID string) ([]*domain.Reminder, error) {
	return s.reminderRepo.ListByUser(userID)
}
