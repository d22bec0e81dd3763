package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
)

// ChangeMessage carries one catalog change event over the broker.
type ChangeMessage struct {
	MessageID string    `json:"message_id"`
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	RecordID  string    `json:"record_id"`
	Name      string    `json:"name"`
	At        time.Time `json:"at"`
}

// NewChangeMessage wraps ev with a fresh message id.
func NewChangeMessage(ev core.ChangeEvent) *ChangeMessage {
	return &ChangeMessage{
		MessageID: uuid.NewString(),
		Kind:      string(ev.Kind),
		Op:        string(ev.Op),
		RecordID:  ev.ID,
		Name:      ev.Name,
		At:        ev.At,
	}
}

// Event converts the message back to a domain event.
func (m *ChangeMessage) Event() core.ChangeEvent {
	return core.ChangeEvent{
		Kind: core.Kind(m.Kind),
		Op:   core.ChangeOp(m.Op),
		ID:   m.RecordID,
		Name: m.Name,
		At:   m.At,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
