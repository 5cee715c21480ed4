package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// SyncClientRepository tracks per-client push activity. Records are upserted
// on every accepted push batch and only ever grow their counters.
type SyncClientRepository interface {
	FindByID(clientID string) (*domain.SyncClient, error)
	Upsert(client *domain.SyncClient) error
	List() ([]*domain.SyncClient, error)
}

type syncClientRepository struct {
	client *kivik.Client
	dbName string
}

func NewSyncClientRepository(client *kivik.Client, dbName string) SyncClientRepository {
	return &syncClientRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *syncClientRepository) FindByID(clientID string) (*domain.SyncClient, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("client:%s", clientID)
	row := db.Get(context.Background(), docID)

	var sc domain.SyncClient
	if err := row.ScanDoc(&sc); err != nil {
		return nil, fmt.Errorf("failed to find sync client: %w", err)
	}

	return &sc, nil
}

func (r *syncClientRepository) Upsert(client *domain.SyncClient) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("client:%s", client.ID)

	doc := map[string]interface{}{
		"id":           client.ID,
		"user_id":      client.UserID,
		"last_push_at": client.LastPushAt,
		"batches":      client.Batches,
		"ops":          client.Ops,
		"errors":       client.Errors,
		"last_batch":   client.LastBatch,
		"updated_at":   time.Now(),
	}

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err == nil {
		if rev, ok := existingDoc["_rev"].(string); ok {
			doc["_rev"] = rev
		}
	}

	_, err := db.Put(context.Background(), docID, doc)
	if err != nil {
		return fmt.Errorf("failed to upsert sync client: %w", err)
	}

	return nil
}

func (r *syncClientRepository) List() ([]*domain.SyncClient, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"last_push_at": map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sync clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.SyncClient
	for rows.Next() {
		var sc domain.SyncClient
		if err := rows.ScanDoc(&sc); err != nil {
			continue
		}
		clients = append(clients, &sc)
	}

	return clients, nil
}
