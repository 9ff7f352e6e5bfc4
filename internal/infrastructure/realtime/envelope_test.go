package realtime

import (
	"encoding/json"
	"testing"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := board.NodePayload{ID: 7, BoardID: 1, Type: board.NodeTypeNote, Title: "Note"}

	env, err := NewEnvelope(MessageNodeCreated, payload, "client-a")
	require.NoError(t, err)

	raw, err := env.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageNodeCreated, decoded.Type)
	assert.Equal(t, "client-a", decoded.Meta.ClientID)
	assert.False(t, decoded.Meta.Timestamp.IsZero())

	var got board.NodePayload
	require.NoError(t, json.Unmarshal(decoded.Data, &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Note", got.Title)
}

func TestDecodeEnvelope_UnknownType(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"type":"node:exploded","meta":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown message type")
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{not json`))
	assert.Error(t, err)
}

func TestNewEnvelope_NilData(t *testing.T) {
	env, err := NewEnvelope(MessageConnected, nil, "")
	require.NoError(t, err)
	assert.Nil(t, env.Data)
	assert.Empty(t, env.Meta.ClientID)
}
