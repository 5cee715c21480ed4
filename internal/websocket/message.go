package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	TypeEntityChange MessageType = "entity_change"
	TypeNotification MessageType = "notification"
	TypeAck          MessageType = "ack"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		msg.Payload = data
	}

	return msg, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return fmt.Errorf("message has no payload")
	}
	return json.Unmarshal(m.Payload, v)
}

// EntityChangePayload announces that a sync push mutated an entity, so other
// connected clients of the same user can pull without polling.
type EntityChangePayload struct {
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	OpType     string    `json:"op_type"`
	Version    int64     `json:"version,omitempty"`
	ClientID   string    `json:"client_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NotificationPayload struct {
	NotificationID string `json:"notification_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	EntityKind     string `json:"entity_kind,omitempty"`
	EntityID       string `json:"entity_id,omitempty"`
}

type AckPayload struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
