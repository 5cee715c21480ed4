package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fieldsafe-sync-server/internal/domain"
)

type AuditLogRepository interface {
	Create(entry *domain.AuditLog) error
	ListByUser(userID string) ([]*domain.AuditLog, error)
	ListRecent(limit int) ([]*domain.AuditLog, error)
}

type auditLogRepo struct {
	baseURL string
	client  *http.Client
}

func NewAuditLogRepository(baseURL string) AuditLogRepository {
	return &auditLogRepo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *auditLogRepo) Create(entry *domain.AuditLog) error {
	doc := map[string]interface{}{
		"_id":        fmt.Sprintf("audit:%s", entry.ID),
		"user_id":    entry.UserID,
		"action":     entry.Action,
		"entity":     entry.Entity,
		"entity_id":  entry.EntityID,
		"payload":    entry.Payload,
		"created_at": entry.CreatedAt,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := r.client.Post(r.baseURL, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to append audit entry: status %d", resp.StatusCode)
	}

	return nil
}

func (r *auditLogRepo) ListByUser(userID string) ([]*domain.AuditLog, error) {
	viewURL := fmt.Sprintf("%s/_design/audit/_view/by_user?key=\"%s\"", r.baseURL, userID)

	resp, err := r.client.Get(viewURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Rows []struct {
			Value domain.AuditLog `json:"value"`
		} `json:"rows"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditLog, len(result.Rows))
	for i, row := range result.Rows {
		e := row.Value
		entries[i] = &e
	}

	return entries, nil
}

func (r *auditLogRepo) ListRecent(limit int) ([]*domain.AuditLog, error) {
	viewURL := fmt.Sprintf("%s/_design/audit/_view/by_created?descending=true&limit=%d", r.baseURL, limit)

	resp, err := r.client.Get(viewURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Rows []struct {
			Value domain.AuditLog `json:"value"`
		} `json:"rows"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditLog, len(result.Rows))
	for i, row := range result.Rows {
		e := row.Value
		entries[i] = &e
	}

	return entries, nil
}
