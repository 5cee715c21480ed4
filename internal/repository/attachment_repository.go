package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type AttachmentRepository interface {
	Create(attachment *domain.Attachment) error
	FindByID(id string) (*domain.Attachment, error)
	ListByEntity(linkedKind, linkedID string) ([]*domain.Attachment, error)
	MarkUploaded(id, checksum string, size int64) error
	Delete(id string) error
}

type attachmentRepository struct {
	client *kivik.Client
	dbName string
}

func NewAttachmentRepository(client *kivik.Client, dbName string) AttachmentRepository {
	return &attachmentRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *attachmentRepository) Create(attachment *domain.Attachment) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("attachment:%s", attachment.ID)
	_, err := db.Put(context.Background(), docID, attachment)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

func (r *attachmentRepository) FindByID(id string) (*domain.Attachment, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("attachment:%s", id)
	row := db.Get(context.Background(), docID)

	var attachment domain.Attachment
	if err := row.ScanDoc(&attachment); err != nil {
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}

	return &attachment, nil
}

func (r *attachmentRepository) ListByEntity(linkedKind, linkedID string) ([]*domain.Attachment, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"linked_kind": linkedKind,
			"linked_id":   linkedID,
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.ScanDoc(&attachment); err != nil {
			continue
		}
		attachments = append(attachments, &attachment)
	}

	return attachments, nil
}

func (r *attachmentRepository) MarkUploaded(id, checksum string, size int64) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("attachment:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch attachment for upload mark: %w", err)
	}

	existingDoc["uploaded"] = true
	existingDoc["checksum"] = checksum
	existingDoc["updated_at"] = time.Now()
	if size > 0 {
		existingDoc["size"] = size
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to mark attachment uploaded: %w", err)
	}

	return nil
}

func (r *attachmentRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("attachment:%s", id)

	row := db.Get(context.Background(), docID)

	var existingDoc map[string]interface{}
	if err := row.ScanDoc(&existingDoc); err != nil {
		return err
	}

	rev, _ := existingDoc["_rev"].(string)
	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	return nil
}
