package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	boardapp "github.com/flowweek/flowweek/internal/application/board"
	"github.com/flowweek/flowweek/internal/domain/shared"
	"github.com/flowweek/flowweek/internal/infrastructure/cache"
	"github.com/flowweek/flowweek/internal/infrastructure/config"
	"github.com/flowweek/flowweek/internal/infrastructure/event"
	"github.com/flowweek/flowweek/internal/infrastructure/logger"
	"github.com/flowweek/flowweek/internal/infrastructure/persistence"
	"github.com/flowweek/flowweek/internal/infrastructure/realtime"
	"github.com/flowweek/flowweek/internal/interfaces/http/handler"
	"github.com/flowweek/flowweek/internal/interfaces/http/middleware"
	"github.com/flowweek/flowweek/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FlowWeek",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Background components share this context; cancelling it stops the
	// hub, the redis relay and the event bus.
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Event bus
	bus := event.NewInMemoryEventBus(log.Named("eventbus"))
	if err := bus.Start(appCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Realtime hub
	hub := realtime.NewHub(log.Named("realtime"))
	go hub.Run(appCtx)

	// Optional Redis relay for multi-replica fan-out. The same client
	// backs the shared idempotency store; single replicas fall back to
	// the in-memory one.
	var bridge *realtime.RedisBridge
	var seen shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(appCtx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()

		bridge = realtime.NewRedisBridge(redisClient, cfg.Redis.Channel, hub, log.Named("relay"))
		go bridge.Run(appCtx)
		seen = cache.NewRedisIdempotencyStore(redisClient, "")
		log.Info("Redis relay enabled", zap.String("channel", cfg.Redis.Channel))
	} else {
		seen = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		_ = seen.Close()
	}()

	bus.Subscribe(realtime.NewBoardEventSubscriber(hub, bridge, seen, log.Named("realtime")))

	// Repositories and application service
	boardService := boardapp.NewService(
		persistence.NewGormBoardRepository(db.DB),
		persistence.NewGormFlowRepository(db.DB),
		persistence.NewGormNodeRepository(db.DB),
		persistence.NewGormEdgeRepository(db.DB),
		bus,
		log.Named("board"),
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r := router.NewRouter(engine)
	r.Register(handler.NewFlowHandler(boardService)).
		Register(handler.NewNodeHandler(boardService)).
		Register(handler.NewEdgeHandler(boardService)).
		Register(handler.NewRealtimeHandler(hub, cfg.Realtime, cfg.HTTP.CORSAllowOrigins, log.Named("realtime"))).
		Register(handler.NewSystemHandler(db))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	stopApp()
	if err := bus.Stop(context.Background()); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
