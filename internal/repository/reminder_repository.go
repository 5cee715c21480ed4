package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fieldsafe-sync-server/internal/domain"
)

type ReminderRepository interface {
	Create(reminder *domain.Reminder) error
	ListByUser(userID string) ([]*domain.Reminder, error)
	MarkSent(reminderID string) error
}

type reminderRepo struct {
	baseURL string
	client  *http.Client
}

func NewReminderRepository(baseURL string) ReminderRepository {
	return &reminderRepo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *reminderRepo) Create(reminder *domain.Reminder) error {
	doc := map[string]interface{}{
		"_id":        fmt.Sprintf("reminder:%s", reminder.ID),
		"user_id":    reminder.UserID,
		"talk_id":    reminder.TalkID,
		"remind_at":  reminder.RemindAt,
		"sent":       reminder.Sent,
		"created_at": reminder.CreatedAt,
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
		return fmt.Errorf("failed to create reminder: status %d", resp.StatusCode)
	}

	return nil
}

func (r *reminderRepo) ListByUser(userID string) ([]*domain.Reminder, error) {
	viewURL := fmt.Sprintf("%s/_design/reminders/_view/by_user?key=\"%s\"", r.baseURL, userID)

	resp, err := r.client.Get(viewURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Rows []struct {
			Value domain.Reminder `json:"value"`
		} `json:"rows"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	reminders := make([]*domain.Reminder, len(result.Rows))
	for i, row := range result.Rows {
		rem := row.Value
		reminders[i] = &rem
	}

	return reminders, nil
}

func (r *reminderRepo) MarkSent(reminderID string) error {
	docID := fmt.Sprintf("reminder:%s", reminderID)
	url := fmt.Sprintf("%s/%s", r.baseURL, docID)

	resp, err := r.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("reminder not found")
	}

	var existingDoc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&existingDoc); err != nil {
		return err
	}

	existingDoc["sent"] = true
	existingDoc["updated_at"] = time.Now()

	data, err := json.Marshal(existingDoc)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	putResp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusCreated && putResp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to mark reminder sent: status %d", putResp.StatusCode)
	}

	return nil
}
