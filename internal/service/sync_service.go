package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/internal/repository"
	"fieldsafe-sync-server/internal/websocket"
)

// SyncService coordinates the push/pull cycle for offline clients. Operations
// in a batch are applied strictly in input order with no batch transaction:
// one failing operation is reported in its own result and never rolls back or
// aborts its siblings. Intra-batch references are not resolved server-side;
// attachment metadata must accompany the operation that creates its parent.
type SyncService struct {
	applier        *OperationApplier
	attachments    *AttachmentService
	audit          *AuditService
	notifications  *NotificationService
	clientRepo     repository.SyncClientRepository
	siteRepo       repository.SiteRepository
	inspectionRepo repository.InspectionRepository
	incidentRepo   repository.IncidentRepository
	talkRepo       repository.ToolboxTalkRepository
	wsManager      *websocket.Manager
}

func NewSyncService(
	applier *OperationApplier,
	attachments *AttachmentService,
	audit *AuditService,
	notifications *NotificationService,
	clientRepo repository.SyncClientRepository,
	siteRepo repository.SiteRepository,
	inspectionRepo repository.InspectionRepository,
	incidentRepo repository.IncidentRepository,
	talkRepo repository.ToolboxTalkRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		applier:        applier,
		attachments:    attachments,
		audit:          audit,
		notifications:  notifications,
		clientRepo:     clientRepo,
		siteRepo:       siteRepo,
		inspectionRepo: inspectionRepo,
		incidentRepo:   incidentRepo,
		talkRepo:       talkRepo,
		wsManager:      wsManager,
	}
}

// Push applies a batch of client operations and returns exactly one result
// per operation, correlated by op id (or local id when absent).
func (s *SyncService) Push(clientID, userID string, ops []domain.Operation) ([]domain.SyncResult, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	results := make([]domain.SyncResult, 0, len(ops))
	errorCount := 0

	for i := range ops {
		op := &ops[i]
		result := s.applyOne(op, clientID, userID)
		if result.Status == domain.SyncError {
			errorCount++
		}
		results = append(results, result)
	}

	if s.audit != nil {
		s.audit.Record(userID, domain.AuditActionSync, domain.AuditEntitySyncQueue, clientID, map[string]interface{}{
			"operationCount": len(ops),
			"resultsCount":   len(results),
		})
	}

	s.trackClient(clientID, userID, len(ops), errorCount)

	return results, nil
}

func (s *SyncService) applyOne(op *domain.Operation, clientID, userID string) domain.SyncResult {
	opID := resolveOpID(op)

	outcome, err := s.applier.Apply(op.OpType, op.Entity, op.Payload, userID)
	if err != nil {
		return domain.SyncResult{
			OpID:   opID,
			Status: domain.SyncError,
			Error:  err.Error(),
		}
	}

	result := domain.SyncResult{
		OpID:            opID,
		Status:          domain.SyncAccepted,
		ServerID:        outcome.ServerID,
		Version:         outcome.Version,
		ServerTimestamp: &outcome.Timestamp,
	}

	if len(op.AttachmentsMeta) > 0 && s.attachments != nil {
		result.Attachments = s.attachments.Reconcile(op.AttachmentsMeta, op.Entity, outcome.ServerID, userID)
	}

	if op.Entity == domain.EntityIncident && op.OpType == domain.OpCreate && s.notifications != nil {
		s.notifications.IncidentReported(userID, outcome.ServerID)
	}

	s.broadcastChange(userID, clientID, op, outcome)

	return result
}

// resolveOpID returns the operation's own op id, then the payload's op_id
// field, then the local id. Clients match on whichever key they sent.
func resolveOpID(op *domain.Operation) string {
	if op.OpID != "" {
		return op.OpID
	}

	var meta struct {
		OpID string `json:"op_id"`
	}
	if err := json.Unmarshal(op.Payload, &meta); err == nil && meta.OpID != "" {
		return meta.OpID
	}

	return op.LocalID
}

func (s *SyncService) broadcastChange(userID, clientID string, op *domain.Operation, outcome *ApplyOutcome) {
	if s.wsManager == nil {
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeEntityChange, &websocket.EntityChangePayload{
		EntityKind: op.Entity,
		EntityID:   outcome.ServerID,
		OpType:     string(op.OpType),
		Version:    outcome.Version,
		ClientID:   clientID,
		UpdatedAt:  outcome.Timestamp,
	})
	if err != nil {
		return
	}

	s.wsManager.BroadcastToUser(userID, msg, clientID)
}

func (s *SyncService) trackClient(clientID, userID string, opCount, errorCount int) {
	if s.clientRepo == nil {
		return
	}

	sc, err := s.clientRepo.FindByID(clientID)
	if err != nil {
		sc = &domain.SyncClient{ID: clientID, UserID: userID}
	}

	sc.LastPushAt = time.Now()
	sc.Batches++
	sc.Ops += int64(opCount)
	sc.Errors += int64(errorCount)
	sc.LastBatch = opCount

	if err := s.clientRepo.Upsert(sc); err != nil {
		log.Printf("failed to track sync client %s: %v", clientID, err)
	}
}

// Pull returns every entity visible to the user that changed strictly after
// the watermark. Clients must chain the returned timestamp as their next
// since value; a locally observed clock would miss same-instant writes.
func (s *SyncService) Pull(userID string, since time.Time) (*domain.PullResponse, error) {
	inspections, err := s.inspectionRepo.List(userID)
	if err != nil {
		return nil, err
	}

	incidents, err := s.incidentRepo.List(userID)
	if err != nil {
		return nil, err
	}

	talks, err := s.talkRepo.List(userID)
	if err != nil {
		return nil, err
	}

	sites, err := s.siteRepo.List()
	if err != nil {
		return nil, err
	}

	resp := &domain.PullResponse{
		Inspections:  []*domain.Inspection{},
		Incidents:    []*domain.Incident{},
		ToolboxTalks: []*domain.ToolboxTalk{},
		Sites:        []*domain.Site{},
	}

	for _, inspection := range inspections {
		if inspection.UpdatedAt.After(since) {
			resp.Inspections = append(resp.Inspections, inspection)
		}
	}
	for _, incident := range incidents {
		if incident.UpdatedAt.After(since) {
			resp.Incidents = append(resp.Incidents, incident)
		}
	}
	for _, talk := range talks {
		if talk.UpdatedAt.After(since) {
			resp.ToolboxTalks = append(resp.ToolboxTalks, talk)
		}
	}
	for _, site := range sites {
		if site.UpdatedAt.After(since) {
			resp.Sites = append(resp.Sites, site)
		}
	}

	resp.Timestamp = time.Now()

	return resp, nil
}

// Ack accepts client acknowledgments. No queue state is kept server-side, so
// acknowledgments are counted but not persisted.
func (s *SyncService) Ack(userID string, acks []domain.Acknowledgment) int {
	log.Printf("sync ack from user %s: %d operations acknowledged", userID, len(acks))
	return len(acks)
}

func (s *SyncService) Status() (*domain.SyncStatusResponse, error) {
	stats := domain.QueueStats{}

	if s.clientRepo != nil {
		clients, err := s.clientRepo.List()
		if err == nil {
			stats.Clients = len(clients)
			for _, c := range clients {
				stats.BatchesTotal += c.Batches
				stats.OpsTotal += c.Ops
				stats.ErrorsTotal += c.Errors
				stats.LastBatchSize = c.LastBatch
			}
		}
	}

	return &domain.SyncStatusResponse{
		ServerTime: time.Now(),
		QueueStats: stats,
		Health:     "ok",
	}, nil
}
