package domain

import "time"

type ToolboxTalk struct {
	ID          string     `json:"id"`
	SiteID      string     `json:"site_id"`
	Topic       string     `json:"topic"`
	Notes       string     `json:"notes,omitempty"`
	Attendees   string     `json:"attendees,omitempty"` // serialized JSON attendee list
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedByID string     `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int64      `json:"version"`
}

type CreateToolboxTalkRequest struct {
	SiteID      string      `json:"site_id" validate:"required"`
	Topic       string      `json:"topic" validate:"required,max=200"`
	Notes       string      `json:"notes"`
	Attendees   interface{} `json:"attendees"`
	ScheduledAt string      `json:"scheduled_at"`
}

type UpdateToolboxTalkRequest struct {
	Topic       *string     `json:"topic" validate:"omitempty,max=200"`
	Notes       *string     `json:"notes"`
	Attendees   interface{} `json:"attendees"`
	ScheduledAt *string     `json:"scheduled_at"`
}
