package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type SiteRepository interface {
	Create(site *domain.Site) error
	FindByID(id string) (*domain.Site, error)
	List() ([]*domain.Site, error)
	Update(site *domain.Site) error
}

type siteRepository struct {
	client *kivik.Client
	dbName string
}

func NewSiteRepository(client *kivik.Client, dbName string) SiteRepository {
	return &siteRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *siteRepository) Create(site *domain.Site) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("site:%s", site.ID)
	_, err := db.Put(context.Background(), docID, site)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}

	return nil
}

func (r *siteRepository) FindByID(id string) (*domain.Site, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("site:%s", id)
	row := db.Get(context.Background(), docID)

	var site domain.Site
	if err := row.ScanDoc(&site); err != nil {
		return nil, fmt.Errorf("failed to find site: %w", err)
	}

	return &site, nil
}

func (r *siteRepository) List() ([]*domain.Site, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"name":    map[string]interface{}{"$exists": true},
			"address": map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		var site domain.Site
		if err := rows.ScanDoc(&site); err != nil {
			continue
		}
		sites = append(sites, &site)
	}

	return sites, nil
}

func (r *siteRepository) Update(site *domain.Site) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("site:%s", site.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing site for update: %w", err)
	}

	existingDoc["name"] = site.Name
	existingDoc["address"] = site.Address
	existingDoc["location"] = site.Location
	existingDoc["status"] = site.Status
	existingDoc["updated_at"] = time.Now()

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	return nil
}
