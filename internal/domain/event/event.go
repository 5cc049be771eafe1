package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event about a claim
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	ClaimID       string         `json:"claim_id"`
	ActorID       string         `json:"actor_id"`
	Payload       map[string]any `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}

// New creates an event with a fresh ID, timestamp and correlation chain
func New(eventType Type, claimID, actorID string, payload map[string]any) *Event {
	evt := NewWithCorrelation(eventType, claimID, actorID, payload, "")
	evt.CorrelationID = evt.ID
	return evt
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, claimID, actorID string, payload map[string]any, correlationID string) *Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ClaimID:       claimID,
		ActorID:       actorID,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// WithPayload returns a copy of the event with key set in its payload
func (e *Event) WithPayload(key string, value any) *Event {
	payload := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// String returns a string payload value or ""
func (e *Event) String(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns a bool payload value or false
func (e *Event) Bool(key string) bool {
	b, _ := e.Payload[key].(bool)
	return b
}
