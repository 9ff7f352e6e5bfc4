package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"go.uber.org/zap"
)

// seenEventTTL bounds how long processed event IDs are remembered for
// duplicate suppression.
const seenEventTTL = 10 * time.Minute

// BoardEventSubscriber bridges the domain event bus to the websocket hub.
// Every board change event becomes a wire frame broadcast to the board's
// watchers, and forwarded to the Redis bridge when one is configured so
// other replicas can relay it too.
type BoardEventSubscriber struct {
	hub    *Hub
	bridge *RedisBridge
	seen   shared.IdempotencyStore
	logger *zap.Logger
}

// NewBoardEventSubscriber creates a subscriber. The bridge may be nil
// for single-replica deployments; the store may be nil to disable
// duplicate suppression.
func NewBoardEventSubscriber(hub *Hub, bridge *RedisBridge, seen shared.IdempotencyStore, logger *zap.Logger) *BoardEventSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardEventSubscriber{hub: hub, bridge: bridge, seen: seen, logger: logger}
}

// EventTypes returns the board change events this subscriber relays
func (s *BoardEventSubscriber) EventTypes() []string {
	return []string{
		board.EventTypeNodeCreated,
		board.EventTypeNodeUpdated,
		board.EventTypeNodeDeleted,
		board.EventTypeEdgeCreated,
		board.EventTypeEdgeUpdated,
		board.EventTypeEdgeDeleted,
	}
}

// Handle converts a domain event into a wire frame and fans it out.
// Redelivered events are dropped when a store is configured; a store
// failure fails open so watchers still get the frame.
func (s *BoardEventSubscriber) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if s.seen != nil {
		isNew, err := s.seen.MarkProcessed(ctx, evt.EventID().String(), seenEventTTL)
		if err != nil {
			s.logger.Warn("idempotency check failed",
				zap.String("event_id", evt.EventID().String()),
				zap.Error(err),
			)
		} else if !isNew {
			return nil
		}
	}

	msgType, data, err := wireMessage(evt)
	if err != nil {
		return err
	}

	env, err := NewEnvelope(msgType, data, evt.OriginClientID())
	if err != nil {
		return err
	}
	payload, err := env.Encode()
	if err != nil {
		return err
	}

	s.hub.Broadcast(evt.BoardID(), payload)

	if s.bridge != nil {
		if err := s.bridge.Publish(ctx, evt.BoardID(), payload); err != nil {
			// Local watchers already got the frame; losing the relay is
			// worth a warning, not a failed request.
			s.logger.Warn("failed to relay event to redis",
				zap.String("event_type", evt.EventType()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// wireMessage maps a domain event to its wire type and payload
func wireMessage(evt shared.DomainEvent) (string, any, error) {
	switch e := evt.(type) {
	case *board.NodeCreatedEvent:
		return MessageNodeCreated, e.Node, nil
	case *board.NodeUpdatedEvent:
		return MessageNodeUpdated, e.Node, nil
	case *board.NodeDeletedEvent:
		return MessageNodeDeleted, e.Node, nil
	case *board.EdgeCreatedEvent:
		return MessageEdgeCreated, e.Edge, nil
	case *board.EdgeUpdatedEvent:
		return MessageEdgeUpdated, e.Edge, nil
	case *board.EdgeDeletedEvent:
		return MessageEdgeDeleted, e.Edge, nil
	default:
		return "", nil, fmt.Errorf("unexpected event type %q", evt.EventType())
	}
}

// Ensure BoardEventSubscriber implements EventHandler
var _ shared.EventHandler = (*BoardEventSubscriber)(nil)
