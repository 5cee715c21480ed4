package domain

import "time"

// Attachment starts life as a placeholder created during sync reconciliation
// (uploaded=false, storage path under pending/) and becomes immutable once the
// binary content lands, except for deletion.
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	Uploaded    bool      `json:"uploaded"`
	Checksum    string    `json:"checksum,omitempty"`
	CreatedByID string    `json:"created_by_id"`
	LinkedKind  string    `json:"linked_kind"`
	LinkedID    string    `json:"linked_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MarkUploadedRequest struct {
	Checksum string `json:"checksum"`
	Size     int64  `json:"size" validate:"omitempty,gte=0"`
}
