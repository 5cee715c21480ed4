package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type ToolboxTalkRepository interface {
	Create(talk *domain.ToolboxTalk) error
	FindByID(id string) (*domain.ToolboxTalk, error)
	List(userID string) ([]*domain.ToolboxTalk, error)
	ListBySite(siteID string) ([]*domain.ToolboxTalk, error)
	Update(talk *domain.ToolboxTalk) error
}

type toolboxTalkRepository struct {
	client *kivik.Client
	dbName string
}

func NewToolboxTalkRepository(client *kivik.Client, dbName string) ToolboxTalkRepository {
	return &toolboxTalkRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *toolboxTalkRepository) Create(talk *domain.ToolboxTalk) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("talk:%s", talk.ID)
	_, err := db.Put(context.Background(), docID, talk)
	if err != nil {
		return fmt.Errorf("failed to create toolbox talk: %w", err)
	}

	return nil
}

func (r *toolboxTalkRepository) FindByID(id string) (*domain.ToolboxTalk, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("talk:%s", id)
	row := db.Get(context.Background(), docID)

	var talk domain.ToolboxTalk
	if err := row.ScanDoc(&talk); err != nil {
		return nil, fmt.Errorf("failed to find toolbox talk: %w", err)
	}

	return &talk, nil
}

func (r *toolboxTalkRepository) List(userID string) ([]*domain.ToolboxTalk, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"created_by_id": userID,
			"topic":         map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list toolbox talks: %w", err)
	}
	defer rows.Close()

	var talks []*domain.ToolboxTalk
	for rows.Next() {
		var talk domain.ToolboxTalk
		if err := rows.ScanDoc(&talk); err != nil {
			continue
		}
		talks = append(talks, &talk)
	}

	return talks, nil
}

func (r *toolboxTalkRepository) ListBySite(siteID string) ([]*domain.ToolboxTalk, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"site_id": siteID,
			"topic":   map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list toolbox talks by site: %w", err)
	}
	defer rows.Close()

	var talks []*domain.ToolboxTalk
	for rows.Next() {
		var talk domain.ToolboxTalk
		if err := rows.ScanDoc(&talk); err != nil {
			continue
		}
		talks = append(talks, &talk)
	}

	return talks, nil
}

func (r *toolboxTalkRepository) Update(talk *domain.ToolboxTalk) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("talk:%s", talk.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing toolbox talk for update: %w", err)
	}

	existingDoc["topic"] = talk.Topic
	existingDoc["notes"] = talk.Notes
	existingDoc["attendees"] = talk.Attendees
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = talk.Version // Service should increment this

	if talk.ScheduledAt != nil {
		existingDoc["scheduled_at"] = *talk.ScheduledAt
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update toolbox talk: %w", err)
	}

	return nil
}
