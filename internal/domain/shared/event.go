package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64
	AggregateType() string
	BoardID() int64
	// OriginClientID identifies the client whose request produced the
	// event. Realtime consumers use it to suppress self-echoes; empty
	// for server-originated changes.
	OriginClientID() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         int64     `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	BoardIDValue  int64     `json:"board_id"`
	ClientIDValue string    `json:"client_id,omitempty"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() int64 {
	return e.AggID
}

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string {
	return e.AggType
}

// BoardID returns the board the aggregate belongs to
func (e *BaseDomainEvent) BoardID() int64 {
	return e.BoardIDValue
}

// OriginClientID returns the originating client identifier
func (e *BaseDomainEvent) OriginClientID() string {
	return e.ClientIDValue
}

// NewBaseDomainEvent creates the common event fields
func NewBaseDomainEvent(eventType, aggType string, aggID, boardID int64, clientID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		BoardIDValue:  boardID,
		ClientIDValue: clientID,
	}
}
