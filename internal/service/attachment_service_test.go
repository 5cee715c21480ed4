package service

import (
	"strings"
	"testing"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/storage"
)

func newTestAttachmentService() (*AttachmentService, *mockAttachmentRepo) {
	repo := newMockAttachmentRepo()
	return NewAttachmentService(repo, storage.NewLocalSigner("/api/v1/attachments")), repo
}

func TestAttachmentService_Reconcile(t *testing.T) {
	service, repo := newTestAttachmentService()

	metas := []domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "photo.jpg", MimeType: "image/jpeg", Size: 512},
		{LocalAttachmentID: "la-2"},
		{LocalAttachmentID: "la-3", Filename: "report.pdf", MimeType: "application/pdf"},
	}

	results := service.Reconcile(metas, domain.EntityIncident, "incident-1", "user1")

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Error != "" || results[0].UploadURL == "" {
		t.Errorf("expected first entry signed, got %+v", results[0])
	}
	if results[1].Error == "" {
		t.Error("expected error for entry without filename")
	}
	if results[2].Error != "" || results[2].UploadURL == "" {
		t.Errorf("expected third entry signed after failed sibling, got %+v", results[2])
	}

	if len(repo.attachments) != 2 {
		t.Errorf("expected 2 placeholders persisted, got %d", len(repo.attachments))
	}
}

func TestAttachmentService_ReconcileUploadURLTargetsAttachment(t *testing.T) {
	service, _ := newTestAttachmentService()

	results := service.Reconcile([]domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "site.png"},
	}, domain.EntityInspection, "inspection-1", "user1")

	if !strings.Contains(results[0].UploadURL, results[0].AttachmentID) {
		t.Errorf("expected upload url to target the attachment id, got %q", results[0].UploadURL)
	}
}

func TestAttachmentService_MarkUploaded(t *testing.T) {
	service, _ := newTestAttachmentService()

	results := service.Reconcile([]domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "photo.jpg", Size: 100},
	}, domain.EntityIncident, "incident-1", "user1")

	id := results[0].AttachmentID

	attachment, err := service.MarkUploaded(id, &domain.MarkUploadedRequest{Checksum: "abc123", Size: 2048})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !attachment.Uploaded {
		t.Error("expected attachment marked uploaded")
	}
	if attachment.Checksum != "abc123" {
		t.Errorf("expected checksum recorded, got %q", attachment.Checksum)
	}

	// Placeholder is immutable once uploaded.
	if _, err := service.MarkUploaded(id, &domain.MarkUploadedRequest{}); err == nil {
		t.Error("expected error marking an uploaded attachment again")
	}
}

func TestAttachmentService_DeleteRequiresOwnership(t *testing.T) {
	service, _ := newTestAttachmentService()

	results := service.Reconcile([]domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "photo.jpg"},
	}, domain.EntityIncident, "incident-1", "user1")

	id := results[0].AttachmentID

	if err := service.Delete("user2", id); err == nil {
		t.Error("expected error deleting another user's attachment")
	}
	if err := service.Delete("user1", id); err != nil {
		t.Errorf("expected owner delete to succeed, got %v", err)
	}
}
