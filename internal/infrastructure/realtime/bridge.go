package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// relayFrame is the message relayed between replicas over Redis pub/sub
type relayFrame struct {
	InstanceID string          `json:"instance_id"`
	BoardID    int64           `json:"board_id"`
	Payload    json.RawMessage `json:"payload"`
}

// RedisBridge relays board change frames between server replicas. Each
// replica publishes its local frames and rebroadcasts frames published
// by the others, skipping its own by instance ID.
type RedisBridge struct {
	client     *redis.Client
	channel    string
	instanceID string
	hub        *Hub
	logger     *zap.Logger
}

// NewRedisBridge creates a bridge on the given pub/sub channel
func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client:     client,
		channel:    channel,
		instanceID: uuid.New().String(),
		hub:        hub,
		logger:     logger,
	}
}

// Publish relays an encoded frame to the other replicas
func (b *RedisBridge) Publish(ctx context.Context, boardID int64, payload []byte) error {
	frame, err := json.Marshal(relayFrame{
		InstanceID: b.instanceID,
		BoardID:    boardID,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, frame).Err()
}

// Run subscribes to the relay channel and rebroadcasts remote frames to
// the local hub until the context is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	b.logger.Info("redis relay started", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("redis relay stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("redis relay subscription closed")
				return
			}
			var frame relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				b.logger.Warn("bad relay frame", zap.Error(err))
				continue
			}
			if frame.InstanceID == b.instanceID {
				continue
			}
			b.hub.Broadcast(frame.BoardID, frame.Payload)
		}
	}
}
