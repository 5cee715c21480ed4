package domain

import "time"

type NotificationType string

const (
	NotificationIncidentReported NotificationType = "incident_reported"
	NotificationTalkScheduled    NotificationType = "talk_scheduled"
	NotificationReminderDue      NotificationType = "reminder_due"
)

type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Body       string           `json:"body,omitempty"`
	EntityKind string           `json:"entity_kind,omitempty"`
	EntityID   string           `json:"entity_id,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

type Reminder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TalkID    string    `json:"talk_id"`
	RemindAt  time.Time `json:"remind_at"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}
