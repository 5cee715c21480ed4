package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type IncidentRepository interface {
	Create(incident *domain.Incident) error
	FindByID(id string) (*domain.Incident, error)
	List(userID string) ([]*domain.Incident, error)
	ListBySite(siteID string) ([]*domain.Incident, error)
	Update(incident *domain.Incident) error
}

type incidentRepository struct {
	client *kivik.Client
	dbName string
}

func NewIncidentRepository(client *kivik.Client, dbName string) IncidentRepository {
	return &incidentRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *incidentRepository) Create(incident *domain.Incident) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("incident:%s", incident.ID)
	_, err := db.Put(context.Background(), docID, incident)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return nil
}

func (r *incidentRepository) FindByID(id string) (*domain.Incident, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("incident:%s", id)
	row := db.Get(context.Background(), docID)

	var incident domain.Incident
	if err := row.ScanDoc(&incident); err != nil {
		return nil, fmt.Errorf("failed to find incident: %w", err)
	}

	return &incident, nil
}

func (r *incidentRepository) List(userID string) ([]*domain.Incident, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"reported_by_id": userID,
			"severity":       map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := rows.ScanDoc(&incident); err != nil {
			continue
		}
		incidents = append(incidents, &incident)
	}

	return incidents, nil
}

func (r *incidentRepository) ListBySite(siteID string) ([]*domain.Incident, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"site_id":  siteID,
			"severity": map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list incidents by site: %w", err)
	}
	defer rows.Close()

	var incidents []*domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := rows.ScanDoc(&incident); err != nil {
			continue
		}
		incidents = append(incidents, &incident)
	}

	return incidents, nil
}

func (r *incidentRepository) Update(incident *domain.Incident) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("incident:%s", incident.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing incident for update: %w", err)
	}

	existingDoc["title"] = incident.Title
	existingDoc["description"] = incident.Description
	existingDoc["severity"] = incident.Severity
	existingDoc["status"] = incident.Status
	existingDoc["location"] = incident.Location
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = incident.Version // Service should increment this

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	return nil
}
