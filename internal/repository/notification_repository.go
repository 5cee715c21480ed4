package repository

import (
	"context"
	"fmt"
	"time"

	"fieldsafe-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NotificationRepository interface {
	Create(notification *domain.Notification) error
	ListByUser(userID string) ([]*domain.Notification, error)
	MarkRead(id string) error
}

type notificationRepository struct {
	client *kivik.Client
	dbName string
}

func NewNotificationRepository(client *kivik.Client, dbName string) NotificationRepository {
	return &notificationRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *notificationRepository) Create(notification *domain.Notification) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("notification:%s", notification.ID)
	_, err := db.Put(context.Background(), docID, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) ListByUser(userID string) ([]*domain.Notification, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
			"type":    map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.ScanDoc(&notification); err != nil {
			continue
		}
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("notification:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch notification: %w", err)
	}

	existingDoc["read"] = true
	existingDoc["updated_at"] = time.Now()

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}
