package domain

import "time"

type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
)

type Incident struct {
	ID           string           `json:"id"`
	SiteID       string           `json:"site_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Severity     IncidentSeverity `json:"severity"`
	Status       IncidentStatus   `json:"status"`
	Location     string           `json:"location,omitempty"` // serialized JSON position within the site
	ReportedByID string           `json:"reported_by_id"`
	OccurredAt   time.Time        `json:"occurred_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Version      int64            `json:"version"`
}

type CreateIncidentRequest struct {
	SiteID      string           `json:"site_id" validate:"required"`
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description"`
	Severity    IncidentSeverity `json:"severity" validate:"required,oneof=low medium high critical"`
	Location    interface{}      `json:"location"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type UpdateIncidentRequest struct {
	Title       *string           `json:"title" validate:"omitempty,max=200"`
	Description *string           `json:"description"`
	Severity    *IncidentSeverity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status      *IncidentStatus   `json:"status" validate:"omitempty,oneof=open investigating resolved"`
	Location    interface{}       `json:"location"`
}
