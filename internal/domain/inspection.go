package domain

import "time"

type InspectionStatus string

const (
	InspectionStatusDraft     InspectionStatus = "draft"
	InspectionStatusSubmitted InspectionStatus = "submitted"
	InspectionStatusApproved  InspectionStatus = "approved"
	InspectionStatusFlagged   InspectionStatus = "flagged"
)

type Inspection struct {
	ID          string           `json:"id"`
	SiteID      string           `json:"site_id"`
	Title       string           `json:"title"`
	Checklist   string           `json:"checklist,omitempty"` // serialized JSON checklist items
	Status      InspectionStatus `json:"status"`
	Score       int              `json:"score"`
	Notes       string           `json:"notes,omitempty"`
	CreatedByID string           `json:"created_by_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Version     int64            `json:"version"`
}

type CreateInspectionRequest struct {
	SiteID    string           `json:"site_id" validate:"required"`
	Title     string           `json:"title" validate:"required,max=200"`
	Checklist interface{}      `json:"checklist"`
	Status    InspectionStatus `json:"status" validate:"omitempty,oneof=draft submitted approved flagged"`
	Score     int              `json:"score" validate:"gte=0,lte=100"`
	Notes     string           `json:"notes"`
}

type UpdateInspectionRequest struct {
	Title     *string           `json:"title" validate:"omitempty,max=200"`
	Checklist interface{}       `json:"checklist"`
	Status    *InspectionStatus `json:"status" validate:"omitempty,oneof=draft submitted approved flagged"`
	Score     *int              `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes     *string           `json:"notes"`
}
