// Package realtime maintains the client's long-lived WebSocket
// connection: hello handshake, typed event decoding, self-echo
// suppression and backoff-scheduled reconnection. The channel is a
// fan-out listener only; writes go through the sync client.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event kinds delivered to the handler. The connection acknowledgement
// sentinel is consumed internally and never reaches the handler.
const (
	EventNodeCreated = "node:created"
	EventNodeUpdated = "node:updated"
	EventNodeDeleted = "node:deleted"
	EventEdgeCreated = "edge:created"
	EventEdgeUpdated = "edge:updated"
	EventEdgeDeleted = "edge:deleted"

	messageHello     = "hello"
	messageConnected = "connected"
)

// Backoff bounds for reconnect scheduling.
const (
	reconnectBase = 500 * time.Millisecond
	reconnectCap  = 5 * time.Second
)

// Event is a decoded change notification from another client.
type Event struct {
	Type      string
	Data      json.RawMessage
	ClientID  string
	Timestamp time.Time
}

// Handler consumes decoded events.
type Handler func(Event)

type wireMeta struct {
	ClientID  string    `json:"client_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type wireEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	Meta *wireMeta       `json:"meta,omitempty"`
}

// Channel is one client's realtime connection. Create with NewChannel,
// start with Connect, stop with Close.
type Channel struct {
	url      string
	clientID string
	handler  Handler
	dialer   *websocket.Dialer
	online   func() bool
	logger   *zap.Logger

	mu             sync.Mutex
	conn           *websocket.Conn
	closed         bool
	delay          time.Duration
	retryTimer     *time.Timer
	badPayloadOnce sync.Once
}

// Option customizes a Channel.
type Option func(*Channel)

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithConnectivity installs a probe reporting whether the host has
// network connectivity. Reconnect attempts pause while it returns false
// and resume when it reports true again.
func WithConnectivity(probe func() bool) Option {
	return func(c *Channel) { c.online = probe }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// NewChannel creates a channel for the ws endpoint at url (for example
// "ws://localhost:8080/api/v1/boards/1/ws"). Events whose meta client
// identifier equals clientID are ignored: those changes already applied
// through the optimistic path.
func NewChannel(url, clientID string, handler Handler, opts ...Option) *Channel {
	c := &Channel{
		url:      url,
		clientID: clientID,
		handler:  handler,
		dialer:   websocket.DefaultDialer,
		online:   func() bool { return true },
		logger:   zap.NewNop(),
		delay:    reconnectBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server and starts the read loop. It returns after
// the first dial attempt; failures schedule a reconnect rather than
// propagate.
func (c *Channel) Connect() {
	if !c.dial() {
		c.scheduleReconnect()
	}
}

// Close marks the channel closed, cancels any pending reconnect and
// drops the connection. No reconnect attempts occur afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// dial attempts one connection. On success it sends the hello message,
// resets the backoff delay and starts the read loop.
func (c *Channel) dial() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	conn, resp, err := c.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.logger.Debug("realtime dial failed", zap.Error(err))
		return false
	}

	hello := wireEnvelope{Type: messageHello, Meta: &wireMeta{ClientID: c.clientID, Timestamp: time.Now().UTC()}}
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return true
	}
	c.conn = conn
	c.delay = reconnectBase
	c.mu.Unlock()

	go c.readLoop(conn)
	return true
}

// readLoop consumes messages until the connection drops, then schedules
// a reconnect unless the channel was closed.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.dispatch(raw)
	}

	c.mu.Lock()
	closed := c.closed
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	if !closed {
		c.scheduleReconnect()
	}
}

// dispatch decodes one frame and hands it to the handler. Malformed or
// unknown payloads are dropped; the first one is logged, the rest are
// not, to keep a misbehaving peer from flooding the log.
func (c *Channel) dispatch(raw []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		c.logMalformed(raw)
		return
	}
	if env.Type == messageConnected || env.Type == messageHello {
		return
	}
	if !knownEventType(env.Type) {
		c.logMalformed(raw)
		return
	}
	if env.Meta != nil && env.Meta.ClientID == c.clientID {
		// Self echo: the optimistic path already applied this change.
		return
	}

	ev := Event{Type: env.Type, Data: env.Data}
	if env.Meta != nil {
		ev.ClientID = env.Meta.ClientID
		ev.Timestamp = env.Meta.Timestamp
	}
	if c.handler != nil {
		c.handler(ev)
	}
}

func (c *Channel) logMalformed(raw []byte) {
	c.badPayloadOnce.Do(func() {
		msg := string(raw)
		if len(msg) > 256 {
			msg = msg[:256]
		}
		c.logger.Warn("dropping malformed realtime payload", zap.String("payload", msg))
	})
}

func knownEventType(t string) bool {
	switch t {
	case EventNodeCreated, EventNodeUpdated, EventNodeDeleted,
		EventEdgeCreated, EventEdgeUpdated, EventEdgeDeleted:
		return true
	}
	return false
}

// scheduleReconnect arms the backoff timer: base delay doubling per
// attempt up to the cap. While the connectivity probe reports offline,
// attempts are deferred at the base delay without growing the backoff.
func (c *Channel) scheduleReconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	delay := c.delay
	if !c.online() {
		// Offline: poll at the base delay without growing the backoff.
		delay = reconnectBase
	} else {
		c.delay *= 2
		if c.delay > reconnectCap {
			c.delay = reconnectCap
		}
	}
	c.retryTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.retryTimer = nil
		c.mu.Unlock()

		if !c.online() {
			c.scheduleReconnect()
			return
		}
		if !c.dial() {
			c.scheduleReconnect()
		}
	})
	c.mu.Unlock()
}
