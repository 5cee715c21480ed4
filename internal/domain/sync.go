package domain

import (
	"encoding/json"
	"time"
)

type OpType string

const (
	OpCreate OpType = "create"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// Entity kind tags accepted in Operation.Entity.
const (
	EntityInspection  = "Inspection"
	EntityIncident    = "Incident"
	EntityToolboxTalk = "ToolboxTalk"
	EntitySite        = "Site"
)

// Operation is one client-originated mutation intent. Attachment metadata must
// ride on the operation that creates or updates its parent entity; the server
// does not resolve references between operations of the same batch.
type Operation struct {
	OpID            string           `json:"op_id"`
	OpType          OpType           `json:"op_type" validate:"required,oneof=create update delete"`
	Entity          string           `json:"entity" validate:"required"`
	Payload         json.RawMessage  `json:"payload" validate:"required"`
	LocalID         string           `json:"local_id"`
	Timestamp       time.Time        `json:"timestamp"`
	AttachmentsMeta []AttachmentMeta `json:"attachments_meta,omitempty"`
}

type AttachmentMeta struct {
	LocalAttachmentID string `json:"local_attachment_id"`
	Filename          string `json:"filename"`
	MimeType          string `json:"mime_type"`
	Size              int64  `json:"size"`
}

type SyncStatus string

const (
	SyncAccepted SyncStatus = "accepted"
	SyncError    SyncStatus = "error"
)

type SyncResult struct {
	OpID            string             `json:"op_id"`
	Status          SyncStatus         `json:"status"`
	ServerID        string             `json:"server_id,omitempty"`
	Version         int64              `json:"version,omitempty"`
	ServerTimestamp *time.Time         `json:"server_timestamp,omitempty"`
	Error           string             `json:"error,omitempty"`
	Attachments     []AttachmentResult `json:"attachments,omitempty"`
}

type AttachmentResult struct {
	LocalAttachmentID string `json:"local_attachment_id"`
	AttachmentID      string `json:"attachment_id,omitempty"`
	UploadURL         string `json:"upload_url,omitempty"`
	Error             string `json:"error,omitempty"`
}

type PushRequest struct {
	ClientID string      `json:"client_id" validate:"required"`
	Ops      []Operation `json:"ops" validate:"required"`
}

type PushResponse struct {
	Results []SyncResult `json:"results"`
}

type PullResponse struct {
	Inspections  []*Inspection  `json:"inspections"`
	Incidents    []*Incident    `json:"incidents"`
	ToolboxTalks []*ToolboxTalk `json:"toolbox_talks"`
	Sites        []*Site        `json:"sites"`
	Timestamp    time.Time      `json:"timestamp"`
}

type Acknowledgment struct {
	OpID     string `json:"op_id" validate:"required"`
	ServerID string `json:"server_id"`
}

type AckRequest struct {
	Acknowledgments []Acknowledgment `json:"acknowledgments" validate:"required,dive"`
}

type QueueStats struct {
	Clients       int   `json:"clients"`
	BatchesTotal  int64 `json:"batches_total"`
	OpsTotal      int64 `json:"ops_total"`
	ErrorsTotal   int64 `json:"errors_total"`
	LastBatchSize int   `json:"last_batch_size"`
}

type SyncStatusResponse struct {
	ServerTime time.Time  `json:"server_time"`
	QueueStats QueueStats `json:"queue_stats"`
	Health     string     `json:"health"`
}

// SyncClient tracks one client installation's push activity; it backs the
// queue stats reported by the status endpoint.
type SyncClient struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LastPushAt time.Time `json:"last_push_at"`
	Batches    int64     `json:"batches"`
	Ops        int64     `json:"ops"`
	Errors     int64     `json:"errors"`
	LastBatch  int       `json:"last_batch"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Typed payloads, one per entity kind. Operation.Payload is decoded into the
// variant selected by Operation.Entity and validated before anything is
// written; unknown fields are dropped rather than spread into the store.

type SitePayload struct {
	ID       string      `json:"id"`
	OpID     string      `json:"op_id"`
	Name     string      `json:"name" validate:"required_without=ID,omitempty,min=2,max=120"`
	Address  string      `json:"address"`
	Location interface{} `json:"location"`
	Status   SiteStatus  `json:"status" validate:"omitempty,oneof=active paused closed planning"`
}

type InspectionPayload struct {
	ID        string           `json:"id"`
	OpID      string           `json:"op_id"`
	SiteID    string           `json:"site_id"`
	Title     string           `json:"title" validate:"omitempty,max=200"`
	Checklist interface{}      `json:"checklist"`
	Status    InspectionStatus `json:"status" validate:"omitempty,oneof=draft submitted approved flagged"`
	Score     int              `json:"score" validate:"gte=0,lte=100"`
	Notes     string           `json:"notes"`
}

type IncidentPayload struct {
	ID          string           `json:"id"`
	OpID        string           `json:"op_id"`
	SiteID      string           `json:"site_id"`
	Title       string           `json:"title" validate:"omitempty,max=200"`
	Description string           `json:"description"`
	Severity    IncidentSeverity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status      IncidentStatus   `json:"status" validate:"omitempty,oneof=open investigating resolved"`
	Location    interface{}      `json:"location"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type ToolboxTalkPayload struct {
	ID          string      `json:"id"`
	OpID        string      `json:"op_id"`
	SiteID      string      `json:"site_id"`
	Topic       string      `json:"topic" validate:"omitempty,max=200"`
	Notes       string      `json:"notes"`
	Attendees   interface{} `json:"attendees"`
	ScheduledAt string      `json:"scheduled_at"`
}
