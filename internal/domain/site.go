package domain

import "time"

type SiteStatus string

const (
	SiteStatusActive   SiteStatus = "active"
	SiteStatusPaused   SiteStatus = "paused"
	SiteStatusClosed   SiteStatus = "closed"
	SiteStatusPlanning SiteStatus = "planning"
)

// Site is globally visible to every authenticated user; it carries no
// ownership scope in pull responses.
type Site struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Location    string     `json:"location,omitempty"` // serialized JSON coordinates
	Status      SiteStatus `json:"status"`
	CreatedByID string     `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateSiteRequest struct {
	Name     string      `json:"name" validate:"required,min=2,max=120"`
	Address  string      `json:"address" validate:"required"`
	Location interface{} `json:"location"`
	Status   SiteStatus  `json:"status" validate:"omitempty,oneof=active paused closed planning"`
}

type UpdateSiteRequest struct {
	Name     *string     `json:"name" validate:"omitempty,min=2,max=120"`
	Address  *string     `json:"address"`
	Location interface{} `json:"location"`
	Status   *SiteStatus `json:"status" validate:"omitempty,oneof=active paused closed planning"`
}
