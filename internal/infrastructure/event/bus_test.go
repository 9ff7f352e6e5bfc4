package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingHandler captures every event it receives
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.events...)
}

func newTestNodeEvent(t *testing.T, clientID string) shared.DomainEvent {
	t.Helper()
	node, err := board.NewNode(1, nil, board.NodeTypeNote, "Note", 0, 0, 160, 90)
	require.NoError(t, err)
	node.ID = 42
	return board.NewNodeCreatedEvent(node, clientID)
}

func TestInMemoryEventBus_PublishSubscribe(t *testing.T) {
	t.Run("delivers to matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{board.EventTypeNodeCreated}}
		bus.Subscribe(handler)

		evt := newTestNodeEvent(t, "client-a")
		require.NoError(t, bus.Publish(context.Background(), evt))

		received := handler.received()
		require.Len(t, received, 1)
		assert.Equal(t, board.EventTypeNodeCreated, received[0].EventType())
		assert.Equal(t, "client-a", received[0].OriginClientID())
	})

	t.Run("skips non-matching handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{board.EventTypeEdgeCreated}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestNodeEvent(t, "")))
		assert.Empty(t, handler.received())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestNodeEvent(t, "")))
		assert.Len(t, handler.received(), 1)
	})

	t.Run("handler error does not block other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{board.EventTypeNodeCreated}, err: errors.New("boom")}
		healthy := &recordingHandler{types: []string{board.EventTypeNodeCreated}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestNodeEvent(t, "")))
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{board.EventTypeNodeCreated}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestNodeEvent(t, "")))
		assert.Empty(t, handler.received())
	})
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
