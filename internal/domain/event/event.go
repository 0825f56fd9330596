package event

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TypeContractCreated = "contract.created"
	TypeContractUpdated = "contract.updated"
	TypeContractDeleted = "contract.deleted"
)

// Types lists every event type the bus dispatches.
func Types() []string {
	return []string{TypeContractCreated, TypeContractUpdated, TypeContractDeleted}
}

var ErrMissingEventType = errors.New("event: eventType is required")

// Event is the in-flight form of an outbox record. ID is assigned from the
// record at dispatch time and never serialized into the payload envelope.
type Event struct {
	ID            uuid.UUID       `json:"-"`
	EventType     string          `json:"eventType"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   uuid.UUID       `json:"aggregateId"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

func New(eventType, aggregateType string, aggregateID uuid.UUID, payload any) (Event, error) {
	if eventType == "" {
		return Event{}, ErrMissingEventType
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       data,
		OccurredAt:    time.Now().UTC(),
	}, nil
}

// Marshal serializes the event into the stored payload envelope.
func Marshal(e Event) ([]byte, error) {
	if e.EventType == "" {
		return nil, ErrMissingEventType
	}
	return json.Marshal(e)
}

// Unmarshal reconstructs an event from a stored payload envelope.
func Unmarshal(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.EventType == "" {
		return Event{}, ErrMissingEventType
	}
	return e, nil
}
