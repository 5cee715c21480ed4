package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type InspectionRepository interface {
	Create(inspection *domain.Inspection) error
	FindByID(id string) (*domain.Inspection, error)
	List(userID string) ([]*domain.Inspection, error)
	ListBySite(siteID string) ([]*domain.Inspection, error)
	Update(inspection *domain.Inspection) error
}

type inspectionRepository struct {
	client *kivik.Client
	dbName string
}

func NewInspectionRepository(client *kivik.Client, dbName string) InspectionRepository {
	return &inspectionRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *inspectionRepository) Create(inspection *domain.Inspection) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("inspection:%s", inspection.ID)
	_, err := db.Put(context.Background(), docID, inspection)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}

	return nil
}

func (r *inspectionRepository) FindByID(id string) (*domain.Inspection, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("inspection:%s", id)
	row := db.Get(context.Background(), docID)

	var inspection domain.Inspection
	if err := row.ScanDoc(&inspection); err != nil {
		return nil, fmt.Errorf("failed to find inspection: %w", err)
	}

	return &inspection, nil
}

func (r *inspectionRepository) List(userID string) ([]*domain.Inspection, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"created_by_id": userID,
			"title":         map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var inspections []*domain.Inspection
	for rows.Next() {
		var inspection domain.Inspection
		if err := rows.ScanDoc(&inspection); err != nil {
			continue
		}
		inspections = append(inspections, &inspection)
	}

	return inspections, nil
}

func (r *inspectionRepository) ListBySite(siteID string) ([]*domain.Inspection, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"site_id": siteID,
			"title":   map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inspections by site: %w", err)
	}
	defer rows.Close()

	var inspections []*domain.Inspection
	for rows.Next() {
		var inspection domain.Inspection
		if err := rows.ScanDoc(&inspection); err != nil {
			continue
		}
		inspections = append(inspections, &inspection)
	}

	return inspections, nil
}

func (r *inspectionRepository) Update(inspection *domain.Inspection) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("inspection:%s", inspection.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing inspection for update: %w", err)
	}

	existingDoc["title"] = inspection.Title
	existingDoc["checklist"] = inspection.Checklist
	existingDoc["status"] = inspection.Status
	existingDoc["score"] = inspection.Score
	existingDoc["notes"] = inspection.Notes
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = inspection.Version // Service should increment this

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update inspection: %w", err)
	}

	return nil
}
