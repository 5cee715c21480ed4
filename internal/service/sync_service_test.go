package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/storage"
)

type mockSiteRepo struct {
	sites map[string]*domain.Site
}

func newMockSiteRepo() *mockSiteRepo {
	return &mockSiteRepo{sites: make(map[string]*domain.Site)}
}

func (m *mockSiteRepo) Create(site *domain.Site) error {
	m.sites[site.ID] = site
	return nil
}

func (m *mockSiteRepo) FindByID(id string) (*domain.Site, error) {
	if s, exists := m.sites[id]; exists {
		return s, nil
	}
	return nil, errors.New("site not found")
}

func (m *mockSiteRepo) List() ([]*domain.Site, error) {
	var sites []*domain.Site
	for _, s := range m.sites {
		sites = append(sites, s)
	}
	return sites, nil
}

func (m *mockSiteRepo) Update(site *domain.Site) error {
	if _, exists := m.sites[site.ID]; exists {
		m.sites[site.ID] = site
		return nil
	}
	return errors.New("site not found")
}

type mockInspectionRepo struct {
	inspections map[string]*domain.Inspection
}

func newMockInspectionRepo() *mockInspectionRepo {
	return &mockInspectionRepo{inspections: make(map[string]*domain.Inspection)}
}

func (m *mockInspectionRepo) Create(inspection *domain.Inspection) error {
	m.inspections[inspection.ID] = inspection
	return nil
}

func (m *mockInspectionRepo) FindByID(id string) (*domain.Inspection, error) {
	if i, exists := m.inspections[id]; exists {
		return i, nil
	}
	return nil, errors.New("inspection not found")
}

func (m *mockInspectionRepo) List(userID string) ([]*domain.Inspection, error) {
	var inspections []*domain.Inspection
	for _, i := range m.inspections {
		if i.CreatedByID == userID {
			inspections = append(inspections, i)
		}
	}
	return inspections, nil
}

func (m *mockInspectionRepo) ListBySite(siteID string) ([]*domain.Inspection, error) {
	var inspections []*domain.Inspection
	for _, i := range m.inspections {
		if i.SiteID == siteID {
			inspections = append(inspections, i)
		}
	}
	return inspections, nil
}

func (m *mockInspectionRepo) Update(inspection *domain.Inspection) error {
	if _, exists := m.inspections[inspection.ID]; exists {
		m.inspections[inspection.ID] = inspection
		return nil
	}
	return errors.New("inspection not found")
}

type mockIncidentRepo struct {
	incidents map[string]*domain.Incident
}

func newMockIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

func (m *mockIncidentRepo) Create(incident *domain.Incident) error {
	m.incidents[incident.ID] = incident
	return nil
}

func (m *mockIncidentRepo) FindByID(id string) (*domain.Incident, error) {
	if i, exists := m.incidents[id]; exists {
		return i, nil
	}
	return nil, errors.New("incident not found")
}

func (m *mockIncidentRepo) List(userID string) ([]*domain.Incident, error) {
	var incidents []*domain.Incident
	for _, i := range m.incidents {
		if i.ReportedByID == userID {
			incidents = append(incidents, i)
		}
	}
	return incidents, nil
}

func (m *mockIncidentRepo) ListBySite(siteID string) ([]*domain.Incident, error) {
	var incidents []*domain.Incident
	for _, i := range m.incidents {
		if i.SiteID == siteID {
			incidents = append(incidents, i)
		}
	}
	return incidents, nil
}

func (m *mockIncidentRepo) Update(incident *domain.Incident) error {
	if _, exists := m.incidents[incident.ID]; exists {
		m.incidents[incident.ID] = incident
		return nil
	}
	return errors.New("incident not found")
}

type mockTalkRepo struct {
	talks map[string]*domain.ToolboxTalk
}

func newMockTalkRepo() *mockTalkRepo {
	return &mockTalkRepo{talks: make(map[string]*domain.ToolboxTalk)}
}

func (m *mockTalkRepo) Create(talk *domain.ToolboxTalk) error {
	m.talks[talk.ID] = talk
	return nil
}

func (m *mockTalkRepo) FindByID(id string) (*domain.ToolboxTalk, error) {
	if tk, exists := m.talks[id]; exists {
		return tk, nil
	}
	return nil, errors.New("toolbox talk not found")
}

func (m *mockTalkRepo) List(userID string) ([]*domain.ToolboxTalk, error) {
	var talks []*domain.ToolboxTalk
	for _, tk := range m.talks {
		if tk.CreatedByID == userID {
			talks = append(talks, tk)
		}
	}
	return talks, nil
}

func (m *mockTalkRepo) ListBySite(siteID string) ([]*domain.ToolboxTalk, error) {
	var talks []*domain.ToolboxTalk
	for _, tk := range m.talks {
		if tk.SiteID == siteID {
			talks = append(talks, tk)
		}
	}
	return talks, nil
}

func (m *mockTalkRepo) Update(talk *domain.ToolboxTalk) error {
	if _, exists := m.talks[talk.ID]; exists {
		m.talks[talk.ID] = talk
		return nil
	}
	return errors.New("toolbox talk not found")
}

type mockSyncClientRepo struct {
	clients map[string]*domain.SyncClient
}

func newMockSyncClientRepo() *mockSyncClientRepo {
	return &mockSyncClientRepo{clients: make(map[string]*domain.SyncClient)}
}

func (m *mockSyncClientRepo) FindByID(clientID string) (*domain.SyncClient, error) {
	if c, exists := m.clients[clientID]; exists {
		return c, nil
	}
	return nil, errors.New("client not found")
}

func (m *mockSyncClientRepo) Upsert(client *domain.SyncClient) error {
	m.clients[client.ID] = client
	return nil
}

func (m *mockSyncClientRepo) List() ([]*domain.SyncClient, error) {
	var clients []*domain.SyncClient
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	return clients, nil
}

type mockAttachmentRepo struct {
	attachments map[string]*domain.Attachment
	failCreate  bool
}

func newMockAttachmentRepo() *mockAttachmentRepo {
	return &mockAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (m *mockAttachmentRepo) Create(attachment *domain.Attachment) error {
	if m.failCreate {
		return errors.New("storage unavailable")
	}
	m.attachments[attachment.ID] = attachment
	return nil
}

func (m *mockAttachmentRepo) FindByID(id string) (*domain.Attachment, error) {
	if a, exists := m.attachments[id]; exists {
		return a, nil
	}
	return nil, errors.New("attachment not found")
}

func (m *mockAttachmentRepo) ListByEntity(linkedKind, linkedID string) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	for _, a := range m.attachments {
		if a.LinkedKind == linkedKind && a.LinkedID == linkedID {
			attachments = append(attachments, a)
		}
	}
	return attachments, nil
}

func (m *mockAttachmentRepo) MarkUploaded(id, checksum string, size int64) error {
	if a, exists := m.attachments[id]; exists {
		a.Uploaded = true
		a.Checksum = checksum
		if size > 0 {
			a.Size = size
		}
		return nil
	}
	return errors.New("attachment not found")
}

func (m *mockAttachmentRepo) Delete(id string) error {
	if _, exists := m.attachments[id]; exists {
		delete(m.attachments, id)
		return nil
	}
	return errors.New("attachment not found")
}

type mockAuditRepo struct {
	entries    []*domain.AuditLog
	failCreate bool
}

func (m *mockAuditRepo) Create(entry *domain.AuditLog) error {
	if m.failCreate {
		return errors.New("audit store down")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByUser(userID string) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	for _, e := range m.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *mockAuditRepo) ListRecent(limit int) ([]*domain.AuditLog, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

type syncFixture struct {
	service        *SyncService
	siteRepo       *mockSiteRepo
	inspectionRepo *mockInspectionRepo
	incidentRepo   *mockIncidentRepo
	talkRepo       *mockTalkRepo
	clientRepo     *mockSyncClientRepo
	attachmentRepo *mockAttachmentRepo
	auditRepo      *mockAuditRepo
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		siteRepo:       newMockSiteRepo(),
		inspectionRepo: newMockInspectionRepo(),
		incidentRepo:   newMockIncidentRepo(),
		talkRepo:       newMockTalkRepo(),
		clientRepo:     newMockSyncClientRepo(),
		attachmentRepo: newMockAttachmentRepo(),
		auditRepo:      &mockAuditRepo{},
	}

	applier := NewOperationApplier(f.siteRepo, f.inspectionRepo, f.incidentRepo, f.talkRepo)
	attachments := NewAttachmentService(f.attachmentRepo, storage.NewLocalSigner("/api/v1/attachments"))
	audit := NewAuditService(f.auditRepo)

	f.service = NewSyncService(
		applier,
		attachments,
		audit,
		nil,
		f.clientRepo,
		f.siteRepo,
		f.inspectionRepo,
		f.incidentRepo,
		f.talkRepo,
		nil,
	)

	return f
}

func inspectionOp(opID, title string) domain.Operation {
	payload, _ := json.Marshal(map[string]interface{}{
		"site_id": "site-1",
		"title":   title,
	})
	return domain.Operation{
		OpID:    opID,
		OpType:  domain.OpCreate,
		Entity:  domain.EntityInspection,
		Payload: payload,
	}
}

func TestSyncService_Push_OneResultPerOperation(t *testing.T) {
	f := newSyncFixture()

	ops := []domain.Operation{
		inspectionOp("op-1", "Scaffolding check"),
		{
			OpID:    "op-2",
			OpType:  domain.OpCreate,
			Entity:  "Bogus",
			Payload: json.RawMessage(`{"x":1}`),
		},
		inspectionOp("op-3", "Harness check"),
	}

	results, err := f.service.Push("client-1", "user1", ops)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].OpID != "op-1" || results[0].Status != domain.SyncAccepted {
		t.Errorf("expected op-1 accepted, got %s %s", results[0].OpID, results[0].Status)
	}
	if results[1].OpID != "op-2" || results[1].Status != domain.SyncError {
		t.Errorf("expected op-2 error, got %s %s", results[1].OpID, results[1].Status)
	}
	if results[1].Error == "" {
		t.Error("expected error message on failed result")
	}
	if results[2].OpID != "op-3" || results[2].Status != domain.SyncAccepted {
		t.Errorf("expected op-3 accepted after failed sibling, got %s %s", results[2].OpID, results[2].Status)
	}

	if len(f.inspectionRepo.inspections) != 2 {
		t.Errorf("expected 2 inspections persisted, got %d", len(f.inspectionRepo.inspections))
	}
}

func TestSyncService_Push_OpIDFallback(t *testing.T) {
	f := newSyncFixture()

	payloadWithOpID, _ := json.Marshal(map[string]interface{}{
		"op_id":   "payload-op-7",
		"site_id": "site-1",
		"title":   "Ladder check",
	})

	ops := []domain.Operation{
		{
			OpType:  domain.OpCreate,
			Entity:  domain.EntityInspection,
			Payload: payloadWithOpID,
		},
		{
			OpType:  domain.OpCreate,
			Entity:  domain.EntityInspection,
			Payload: json.RawMessage(`{"site_id":"site-1","title":"PPE check"}`),
			LocalID: "local-42",
		},
	}

	results, err := f.service.Push("client-1", "user1", ops)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if results[0].OpID != "payload-op-7" {
		t.Errorf("expected op id from payload, got %q", results[0].OpID)
	}
	if results[1].OpID != "local-42" {
		t.Errorf("expected local id fallback, got %q", results[1].OpID)
	}
}

func TestSyncService_Push_ResubmitCreatesDuplicate(t *testing.T) {
	f := newSyncFixture()

	op := inspectionOp("op-1", "Crane check")

	if _, err := f.service.Push("client-1", "user1", []domain.Operation{op}); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	results, err := f.service.Push("client-1", "user1", []domain.Operation{op})
	if err != nil {
		t.Fatalf("second push failed: %v", err)
	}

	if results[0].Status != domain.SyncAccepted {
		t.Fatalf("expected resubmitted op accepted, got %s", results[0].Status)
	}

	// No op id dedup: the same create pushed twice yields two records.
	if len(f.inspectionRepo.inspections) != 2 {
		t.Errorf("expected 2 inspections after resubmit, got %d", len(f.inspectionRepo.inspections))
	}
}

func TestSyncService_Push_VersionIncrementsPerUpdate(t *testing.T) {
	f := newSyncFixture()

	results, err := f.service.Push("client-1", "user1", []domain.Operation{inspectionOp("op-1", "Initial")})
	if err != nil {
		t.Fatalf("create push failed: %v", err)
	}
	if results[0].Version != 1 {
		t.Fatalf("expected version 1 on create, got %d", results[0].Version)
	}

	serverID := results[0].ServerID

	updateOp := func(opID, title string) domain.Operation {
		payload, _ := json.Marshal(map[string]interface{}{"id": serverID, "title": title})
		return domain.Operation{
			OpID:    opID,
			OpType:  domain.OpUpdate,
			Entity:  domain.EntityInspection,
			Payload: payload,
		}
	}

	results, err = f.service.Push("client-1", "user1", []domain.Operation{
		updateOp("op-2", "First edit"),
		updateOp("op-3", "Second edit"),
	})
	if err != nil {
		t.Fatalf("update push failed: %v", err)
	}

	if results[0].Version != 2 {
		t.Errorf("expected version 2 after first update, got %d", results[0].Version)
	}
	if results[1].Version != 3 {
		t.Errorf("expected version 3 after second update, got %d", results[1].Version)
	}

	stored, _ := f.inspectionRepo.FindByID(serverID)
	if stored.Title != "Second edit" {
		t.Errorf("expected last write to win, got %q", stored.Title)
	}
}

func TestSyncService_Push_AttachmentPlaceholders(t *testing.T) {
	f := newSyncFixture()

	op := inspectionOp("op-1", "With photos")
	op.AttachmentsMeta = []domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "before.jpg", MimeType: "image/jpeg", Size: 1024},
		{LocalAttachmentID: "la-2", Filename: "after.jpg", MimeType: "image/jpeg", Size: 2048},
	}

	results, err := f.service.Push("client-1", "user1", []domain.Operation{op})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	atts := results[0].Attachments
	if len(atts) != 2 {
		t.Fatalf("expected 2 attachment results, got %d", len(atts))
	}

	if atts[0].UploadURL == "" || atts[1].UploadURL == "" {
		t.Error("expected upload urls on both attachment results")
	}
	if atts[0].UploadURL == atts[1].UploadURL {
		t.Error("expected distinct upload urls per attachment")
	}

	for _, a := range f.attachmentRepo.attachments {
		if a.Uploaded {
			t.Error("placeholder must not be marked uploaded")
		}
		if !strings.HasPrefix(a.StoragePath, "pending/") {
			t.Errorf("expected pending storage path, got %q", a.StoragePath)
		}
		if a.LinkedID != results[0].ServerID {
			t.Errorf("expected attachment linked to %s, got %s", results[0].ServerID, a.LinkedID)
		}
	}
}

func TestSyncService_Push_AttachmentFailureDoesNotFailOperation(t *testing.T) {
	f := newSyncFixture()
	f.attachmentRepo.failCreate = true

	op := inspectionOp("op-1", "With photo")
	op.AttachmentsMeta = []domain.AttachmentMeta{
		{LocalAttachmentID: "la-1", Filename: "crack.jpg"},
	}

	results, err := f.service.Push("client-1", "user1", []domain.Operation{op})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if results[0].Status != domain.SyncAccepted {
		t.Fatalf("expected operation accepted despite attachment failure, got %s", results[0].Status)
	}
	if len(results[0].Attachments) != 1 || results[0].Attachments[0].Error == "" {
		t.Error("expected attachment-level error on result")
	}
}

func TestSyncService_Push_AuditRecordedPerBatch(t *testing.T) {
	f := newSyncFixture()

	ops := []domain.Operation{
		inspectionOp("op-1", "A"),
		inspectionOp("op-2", "B"),
	}

	if _, err := f.service.Push("client-9", "user1", ops); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if len(f.auditRepo.entries) != 1 {
		t.Fatalf("expected 1 audit entry per batch, got %d", len(f.auditRepo.entries))
	}

	entry := f.auditRepo.entries[0]
	if entry.UserID != "user1" || entry.Action != domain.AuditActionSync {
		t.Errorf("unexpected audit entry: %+v", entry)
	}
	if entry.Entity != domain.AuditEntitySyncQueue || entry.EntityID != "client-9" {
		t.Errorf("unexpected audit target: %s %s", entry.Entity, entry.EntityID)
	}
	if entry.Payload["operationCount"] != 2 {
		t.Errorf("expected operationCount 2, got %v", entry.Payload["operationCount"])
	}
}

func TestSyncService_Push_AuditFailureDoesNotFailPush(t *testing.T) {
	f := newSyncFixture()
	f.auditRepo.failCreate = true

	results, err := f.service.Push("client-1", "user1", []domain.Operation{inspectionOp("op-1", "A")})
	if err != nil {
		t.Fatalf("expected push to survive audit failure, got %v", err)
	}
	if results[0].Status != domain.SyncAccepted {
		t.Errorf("expected accepted result, got %s", results[0].Status)
	}
}

func TestSyncService_Push_RequiresClientID(t *testing.T) {
	f := newSyncFixture()

	if _, err := f.service.Push("", "user1", []domain.Operation{inspectionOp("op-1", "A")}); err == nil {
		t.Error("expected error for missing client id")
	}
}

func TestSyncService_Pull_WatermarkIsStrict(t *testing.T) {
	f := newSyncFixture()

	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.inspectionRepo.Create(&domain.Inspection{
		ID: "old", CreatedByID: "user1", UpdatedAt: since.Add(-time.Hour),
	})
	f.inspectionRepo.Create(&domain.Inspection{
		ID: "boundary", CreatedByID: "user1", UpdatedAt: since,
	})
	f.inspectionRepo.Create(&domain.Inspection{
		ID: "fresh", CreatedByID: "user1", UpdatedAt: since.Add(time.Minute),
	})

	resp, err := f.service.Pull("user1", since)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if len(resp.Inspections) != 1 {
		t.Fatalf("expected 1 inspection, got %d", len(resp.Inspections))
	}
	if resp.Inspections[0].ID != "fresh" {
		t.Errorf("expected only the strictly-newer record, got %s", resp.Inspections[0].ID)
	}

	if resp.Timestamp.IsZero() {
		t.Error("expected server timestamp on pull response")
	}
}

func TestSyncService_Pull_ScopedToUserExceptSites(t *testing.T) {
	f := newSyncFixture()

	now := time.Now()

	f.inspectionRepo.Create(&domain.Inspection{ID: "mine", CreatedByID: "user1", UpdatedAt: now})
	f.inspectionRepo.Create(&domain.Inspection{ID: "theirs", CreatedByID: "user2", UpdatedAt: now})
	f.incidentRepo.Create(&domain.Incident{ID: "their-incident", ReportedByID: "user2", UpdatedAt: now})
	f.siteRepo.Create(&domain.Site{ID: "shared-site", CreatedByID: "user2", UpdatedAt: now})

	resp, err := f.service.Pull("user1", time.Time{})
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if len(resp.Inspections) != 1 || resp.Inspections[0].ID != "mine" {
		t.Errorf("expected only user1's inspection, got %d", len(resp.Inspections))
	}
	if len(resp.Incidents) != 0 {
		t.Errorf("expected no foreign incidents, got %d", len(resp.Incidents))
	}
	// Sites are shared reference data, visible regardless of creator.
	if len(resp.Sites) != 1 || resp.Sites[0].ID != "shared-site" {
		t.Errorf("expected shared site in pull, got %d", len(resp.Sites))
	}
}

func TestSyncService_Pull_EmptySlicesNotNull(t *testing.T) {
	f := newSyncFixture()

	resp, err := f.service.Pull("user1", time.Time{})
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if resp.Inspections == nil || resp.Incidents == nil || resp.ToolboxTalks == nil || resp.Sites == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestSyncService_Ack(t *testing.T) {
	f := newSyncFixture()

	count := f.service.Ack("user1", []domain.Acknowledgment{
		{OpID: "op-1", ServerID: "srv-1"},
		{OpID: "op-2"},
	})

	if count != 2 {
		t.Errorf("expected 2 acknowledged, got %d", count)
	}
}

func TestSyncService_Status_AggregatesClients(t *testing.T) {
	f := newSyncFixture()

	f.service.Push("client-1", "user1", []domain.Operation{
		inspectionOp("op-1", "A"),
		{OpID: "op-2", OpType: domain.OpCreate, Entity: "Bogus", Payload: json.RawMessage(`{}`)},
	})
	f.service.Push("client-2", "user2", []domain.Operation{inspectionOp("op-3", "B")})

	status, err := f.service.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if status.QueueStats.Clients != 2 {
		t.Errorf("expected 2 clients, got %d", status.QueueStats.Clients)
	}
	if status.QueueStats.OpsTotal != 3 {
		t.Errorf("expected 3 ops total, got %d", status.QueueStats.OpsTotal)
	}
	if status.QueueStats.ErrorsTotal != 1 {
		t.Errorf("expected 1 error total, got %d", status.QueueStats.ErrorsTotal)
	}
	if status.Health != "ok" {
		t.Errorf("expected ok health, got %s", status.Health)
	}
}
