package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire message types. Board change messages mirror the REST resources;
// hello and connected frame the connection handshake.
const (
	MessageHello     = "hello"
	MessageConnected = "connected"

	MessageNodeCreated = "node:created"
	MessageNodeUpdated = "node:updated"
	MessageNodeDeleted = "node:deleted"
	MessageEdgeCreated = "edge:created"
	MessageEdgeUpdated = "edge:updated"
	MessageEdgeDeleted = "edge:deleted"
)

var knownMessageTypes = map[string]struct{}{
	MessageHello:       {},
	MessageConnected:   {},
	MessageNodeCreated: {},
	MessageNodeUpdated: {},
	MessageNodeDeleted: {},
	MessageEdgeCreated: {},
	MessageEdgeUpdated: {},
	MessageEdgeDeleted: {},
}

// Meta carries the origin of a change. Clients compare ClientID against
// their own identifier to suppress echoes of their own writes.
type Meta struct {
	ClientID  string    `json:"client_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope is the frame exchanged over the websocket
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	Meta Meta            `json:"meta"`
}

// NewEnvelope builds an envelope with the payload marshalled in place
func NewEnvelope(msgType string, data any, clientID string) (*Envelope, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		raw = b
	}
	return &Envelope{
		Type: msgType,
		Data: raw,
		Meta: Meta{
			ClientID:  clientID,
			Timestamp: time.Now().UTC(),
		},
	}, nil
}

// Encode serializes the envelope for the wire
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a wire frame and rejects unknown message types
func DecodeEnvelope(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if _, ok := knownMessageTypes[env.Type]; !ok {
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
	return &env, nil
}
