package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventSessionCreated EventType = "created"
	EventSessionDeleted EventType = "deleted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateSession AggregateType = "session"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// NewSessionCreatedEvent records a freshly stored session. Sessions of the
// same day share a partition so consumers see them in numbering order.
func NewSessionCreatedEvent(s *Session) OutboxDraft {
	payload, _ := json.Marshal(s)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   strconv.FormatInt(s.ID, 10),
		EventType:     EventSessionCreated,
		PartitionKey:  s.PlayedDate,
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSessionDeletedEvent records the removal of a session.
func NewSessionDeletedEvent(id int64, playedDate string, sessionNo int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"id":          id,
		"played_date": playedDate,
		"session_no":  sessionNo,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   strconv.FormatInt(id, 10),
		EventType:     EventSessionDeleted,
		PartitionKey:  playedDate,
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
