package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBoardEventSubscriber_Handle(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	watcher := newHubClient(1, "watcher", 8)
	hub.register <- watcher

	sub := NewBoardEventSubscriber(hub, nil, nil, zap.NewNop())

	t.Run("relays node created as wire frame", func(t *testing.T) {
		node, err := board.NewNode(1, nil, board.NodeTypeTask, "Ship it", 10, 20, 160, 90)
		require.NoError(t, err)
		node.ID = 5

		require.NoError(t, sub.Handle(ctx, board.NewNodeCreatedEvent(node, "origin-client")))

		env, err := DecodeEnvelope(receiveFrame(t, watcher))
		require.NoError(t, err)
		assert.Equal(t, MessageNodeCreated, env.Type)
		assert.Equal(t, "origin-client", env.Meta.ClientID)

		var payload board.NodePayload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, int64(5), payload.ID)
		assert.Equal(t, "Ship it", payload.Title)
		require.NotNil(t, payload.Status)
		assert.Equal(t, board.TaskStatusTodo, *payload.Status)
	})

	t.Run("relays edge deleted as wire frame", func(t *testing.T) {
		edge, err := board.NewEdge(1, 5, 6)
		require.NoError(t, err)
		edge.ID = 9

		require.NoError(t, sub.Handle(ctx, board.NewEdgeDeletedEvent(edge, "")))

		env, err := DecodeEnvelope(receiveFrame(t, watcher))
		require.NoError(t, err)
		assert.Equal(t, MessageEdgeDeleted, env.Type)
		assert.Empty(t, env.Meta.ClientID)

		var payload board.EdgePayload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, int64(9), payload.ID)
		assert.Equal(t, int64(5), payload.SourceNodeID)
	})
}

func TestBoardEventSubscriber_DropsRedeliveredEvent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	watcher := newHubClient(1, "watcher", 8)
	hub.register <- watcher

	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	sub := NewBoardEventSubscriber(hub, nil, store, zap.NewNop())

	node, err := board.NewNode(1, nil, board.NodeTypeNote, "once", 0, 0, 160, 90)
	require.NoError(t, err)
	node.ID = 7
	evt := board.NewNodeCreatedEvent(node, "")

	require.NoError(t, sub.Handle(ctx, evt))
	receiveFrame(t, watcher)

	// same event delivered again, e.g. a bus retry
	require.NoError(t, sub.Handle(ctx, evt))
	select {
	case frame := <-watcher.send:
		t.Fatalf("duplicate event reached the hub: %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBoardEventSubscriber_EventTypes(t *testing.T) {
	sub := NewBoardEventSubscriber(NewHub(zap.NewNop()), nil, nil, zap.NewNop())
	assert.ElementsMatch(t, []string{
		board.EventTypeNodeCreated,
		board.EventTypeNodeUpdated,
		board.EventTypeNodeDeleted,
		board.EventTypeEdgeCreated,
		board.EventTypeEdgeUpdated,
		board.EventTypeEdgeDeleted,
	}, sub.EventTypes())
}
