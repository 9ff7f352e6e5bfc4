// Package testutil provides shared helpers for integration tests: a
// fully wired application fixture over an in-memory database, JSON
// request helpers that understand the API envelope, and a websocket
// watcher for asserting realtime frames.
package testutil

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/domain/board"
	"github.com/flowweek/flowweek/internal/infrastructure/cache"
	"github.com/flowweek/flowweek/internal/infrastructure/config"
	"github.com/flowweek/flowweek/internal/infrastructure/event"
	"github.com/flowweek/flowweek/internal/infrastructure/persistence"
	"github.com/flowweek/flowweek/internal/infrastructure/realtime"
	"github.com/flowweek/flowweek/internal/interfaces/http/handler"
	"github.com/flowweek/flowweek/internal/interfaces/http/middleware"
	"github.com/flowweek/flowweek/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// Env is a complete application stack for one test: database, event
// bus, realtime hub and the HTTP API served over httptest. Everything
// the production binary wires is wired here, minus Redis.
type Env struct {
	t       *testing.T
	DB      *gorm.DB
	Bus     *event.InMemoryEventBus
	Hub     *realtime.Hub
	Service *boardapp.Service
	Server  *httptest.Server
}

// realtimeConfig returns hub tuning that is generous enough for CI.
func realtimeConfig() config.RealtimeConfig {
	return config.RealtimeConfig{
		WriteWait:      2 * time.Second,
		PongWait:       10 * time.Second,
		PingInterval:   8 * time.Second,
		SendBufferSize: 32,
		MaxMessageSize: 1 << 16,
	}
}

// NewEnv builds and starts the full stack. The returned environment is
// torn down with t.Cleanup.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&board.Board{}, &board.Flow{}, &board.Node{}, &board.Edge{}))

	ctx, cancel := context.WithCancel(context.Background())

	bus := event.NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(ctx))

	hub := realtime.NewHub(zap.NewNop())
	go hub.Run(ctx)

	seen := cache.NewInMemoryIdempotencyStore()
	bus.Subscribe(realtime.NewBoardEventSubscriber(hub, nil, seen, zap.NewNop()))

	service := boardapp.NewService(
		persistence.NewGormBoardRepository(db),
		persistence.NewGormFlowRepository(db),
		persistence.NewGormNodeRepository(db),
		persistence.NewGormEdgeRepository(db),
		bus,
		zap.NewNop(),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine)
	r.Register(handler.NewFlowHandler(service)).
		Register(handler.NewNodeHandler(service)).
		Register(handler.NewEdgeHandler(service)).
		Register(handler.NewRealtimeHandler(hub, realtimeConfig(), nil, zap.NewNop()))
	r.Setup()

	srv := httptest.NewServer(engine)

	env := &Env{
		t:       t,
		DB:      db,
		Bus:     bus,
		Hub:     hub,
		Service: service,
		Server:  srv,
	}
	t.Cleanup(func() {
		srv.Close()
		_ = bus.Stop(context.Background())
		cancel()
		_ = seen.Close()
	})
	return env
}

// BaseURL returns the API root, e.g. http://127.0.0.1:PORT/api/v1.
func (e *Env) BaseURL() string {
	return e.Server.URL + "/api/v1"
}

// WSURL returns the websocket endpoint for a board.
func (e *Env) WSURL(boardID int64) string {
	return "ws" + strings.TrimPrefix(e.Server.URL, "http") +
		"/api/v1/boards/" + strconv.FormatInt(boardID, 10) + "/ws"
}
