package realtime

import (
	"context"

	"go.uber.org/zap"
)

type broadcastMessage struct {
	boardID int64
	payload []byte
}

// Hub tracks connected websocket clients per board and fans board change
// frames out to them. All client bookkeeping happens on the Run goroutine;
// the channels are the only way in.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage

	// boardID -> connected clients, owned by Run
	clients map[int64]map[*Client]struct{}

	logger *zap.Logger
}

// NewHub creates a hub. Call Run before registering clients.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 256),
		clients:    make(map[int64]map[*Client]struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the context is
// cancelled. On shutdown every client's send channel is closed, which
// terminates its write pump.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, boardClients := range h.clients {
				for c := range boardClients {
					close(c.send)
				}
			}
			h.clients = make(map[int64]map[*Client]struct{})
			h.logger.Info("realtime hub stopped")
			return

		case c := <-h.register:
			boardClients, ok := h.clients[c.boardID]
			if !ok {
				boardClients = make(map[*Client]struct{})
				h.clients[c.boardID] = boardClients
			}
			boardClients[c] = struct{}{}
			h.logger.Debug("realtime client connected",
				zap.Int64("board_id", c.boardID),
				zap.String("client_id", c.clientID),
				zap.Int("board_clients", len(boardClients)),
			)

		case c := <-h.unregister:
			if boardClients, ok := h.clients[c.boardID]; ok {
				if _, connected := boardClients[c]; connected {
					delete(boardClients, c)
					close(c.send)
					if len(boardClients) == 0 {
						delete(h.clients, c.boardID)
					}
				}
			}
			h.logger.Debug("realtime client disconnected",
				zap.Int64("board_id", c.boardID),
				zap.String("client_id", c.clientID),
			)

		case msg := <-h.broadcast:
			for c := range h.clients[msg.boardID] {
				select {
				case c.send <- msg.payload:
				default:
					// Slow consumer, drop the connection rather than block the hub
					delete(h.clients[msg.boardID], c)
					close(c.send)
					h.logger.Warn("realtime client dropped, send buffer full",
						zap.Int64("board_id", c.boardID),
						zap.String("client_id", c.clientID),
					)
				}
			}
		}
	}
}

// Broadcast queues an encoded frame for every client watching the board
func (h *Hub) Broadcast(boardID int64, payload []byte) {
	h.broadcast <- broadcastMessage{boardID: boardID, payload: payload}
}
