package service

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"
	"fieldsafe-sync-server/internal/storage"

	"github.com/google/uuid"
)

type AttachmentService struct {
	repo   repository.AttachmentRepository
	signer storage.UploadURLSigner
}

func NewAttachmentService(repo repository.AttachmentRepository, signer storage.UploadURLSigner) *AttachmentService {
	return &AttachmentService{
		repo:   repo,
		signer: signer,
	}
}

// Reconcile creates one placeholder record per metadata entry and returns the
// upload target for each. Entries fail independently; a bad entry never
// aborts its siblings and never escalates to the parent operation.
func (s *AttachmentService) Reconcile(metas []domain.AttachmentMeta, entityKind, serverID, userID string) []domain.AttachmentResult {
	results := make([]domain.AttachmentResult, 0, len(metas))

	for _, meta := range metas {
		results = append(results, s.reconcileOne(meta, entityKind, serverID, userID))
	}

	return results
}

func (s *AttachmentService) reconcileOne(meta domain.AttachmentMeta, entityKind, serverID, userID string) domain.AttachmentResult {
	if meta.Filename == "" {
		return domain.AttachmentResult{
			LocalAttachmentID: meta.LocalAttachmentID,
			Error:             "filename is required",
		}
	}

	now := time.Now()
	attachment := &domain.Attachment{
		ID:          uuid.New().String(),
		Filename:    meta.Filename,
		MimeType:    meta.MimeType,
		Size:        meta.Size,
		StoragePath: fmt.Sprintf("pending/%d_%s", now.UnixNano(), meta.Filename),
		Uploaded:    false,
		CreatedByID: userID,
		LinkedKind:  entityKind,
		LinkedID:    serverID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(attachment); err != nil {
		return domain.AttachmentResult{
			LocalAttachmentID: meta.LocalAttachmentID,
			Error:             err.Error(),
		}
	}

	uploadURL, err := s.signer.SignUpload(context.Background(), attachment.ID, attachment.StoragePath)
	if err != nil {
		return domain.AttachmentResult{
			LocalAttachmentID: meta.LocalAttachmentID,
			AttachmentID:      attachment.ID,
			Error:             fmt.Sprintf("failed to sign upload url: %v", err),
		}
	}

	return domain.AttachmentResult{
		LocalAttachmentID: meta.LocalAttachmentID,
		AttachmentID:      attachment.ID,
		UploadURL:         uploadURL,
	}
}

func (s *AttachmentService) Get(id string) (*domain.Attachment, error) {
	return s.repo.FindByID(id)
}

func (s *AttachmentService) ListByEntity(entityKind, entityID string) ([]*domain.Attachment, error) {
	return s.repo.ListByEntity(entityKind, entityID)
}

// MarkUploaded transitions a placeholder to uploaded once the binary content
// is stored. The record is immutable afterwards, short of deletion.
func (s *AttachmentService) MarkUploaded(id string, req *domain.MarkUploadedRequest) (*domain.Attachment, error) {
	attachment, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if attachment.Uploaded {
		return nil, fmt.Errorf("attachment already uploaded")
	}

	if err := s.repo.MarkUploaded(id, req.Checksum, req.Size); err != nil {
		return nil, err
	}

	return s.repo.FindByID(id)
}

func (s *AttachmentService) Delete(userID, id string) error {
	attachment, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	if attachment.CreatedByID != userID {
		return fmt.Errorf("unauthorized: attachment does not belong to user")
	}

	return s.repo.Delete(id)
}
