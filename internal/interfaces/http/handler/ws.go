package handler

import (
	"net/http"

	"github.com/flowweek/flowweek/internal/infrastructure/config"
	"github.com/flowweek/flowweek/internal/infrastructure/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades board watcher connections to websockets and
// hands them to the hub.
type RealtimeHandler struct {
	BaseHandler
	hub      *realtime.Hub
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler. The origin check
// accepts origins the CORS whitelist accepts; an empty whitelist only
// admits same-origin browsers and non-browser clients.
func NewRealtimeHandler(hub *realtime.Hub, cfg config.RealtimeConfig, allowedOrigins []string, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return &RealtimeHandler{
		hub:    hub,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve upgrades the connection and runs the hello handshake. The peer
// opens with a hello frame naming its client ID and gets a connected
// frame back before any board events flow.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	boardID, ok := boardIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid board ID")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client, err := realtime.Accept(h.hub, conn, boardID, h.cfg, h.logger)
	if err != nil {
		h.logger.Debug("websocket handshake failed",
			zap.Int64("board_id", boardID),
			zap.Error(err),
		)
		_ = conn.Close()
		return
	}
	client.Start()
}

// RegisterRoutes registers the websocket route
func (h *RealtimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/boards/:boardId/ws", h.Serve)
}
