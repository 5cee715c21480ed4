package domain

import "time"

const (
	AuditActionSync = "SYNC"

	AuditEntitySyncQueue = "SyncQueue"
)

// AuditLog is append-only; entries are never updated or deleted.
type AuditLog struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
