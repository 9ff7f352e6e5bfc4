package realtime

import (
	"fmt"
	"time"

	"github.com/flowweek/flowweek/internal/infrastructure/config"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one websocket connection watching a board.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	boardID  int64
	clientID string
	cfg      config.RealtimeConfig
	logger   *zap.Logger
}

// Accept performs the opening handshake on a freshly upgraded connection.
// The peer must send a hello frame carrying its client ID; the server
// answers with connected. Returns the registered client with its pumps
// not yet started.
func Accept(hub *Hub, conn *websocket.Conn, boardID int64, cfg config.RealtimeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn.SetReadLimit(cfg.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		return nil, err
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("bad hello: %w", err)
	}
	if env.Type != MessageHello {
		return nil, fmt.Errorf("expected hello, got %q", env.Type)
	}
	clientID := env.Meta.ClientID

	ack, err := NewEnvelope(MessageConnected, nil, "")
	if err != nil {
		return nil, err
	}
	payload, err := ack.Encode()
	if err != nil {
		return nil, err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("write connected: %w", err)
	}

	c := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, cfg.SendBufferSize),
		boardID:  boardID,
		clientID: clientID,
		cfg:      cfg,
		logger:   logger,
	}
	hub.register <- c
	return c, nil
}

// Start launches the read and write pumps. The call returns immediately;
// the pumps run until the connection drops or the hub closes the send
// channel.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump drains inbound frames. Clients write over REST, so inbound
// traffic is only pong control frames and the occasional stray message,
// but the read loop must run for pong handling to work.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("realtime read error",
					zap.Int64("board_id", c.boardID),
					zap.String("client_id", c.clientID),
					zap.Error(err),
				)
			}
			return
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
			return
		}
	}
}

// writePump forwards queued frames to the peer and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
