package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/buffer"
	"codeberg.org/roomchat/server/internal/config"
	"codeberg.org/roomchat/server/internal/history"
	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/internal/sessions"
	"codeberg.org/roomchat/server/internal/storage"
	ws "codeberg.org/roomchat/server/internal/websocket"
)

const (
	// bound on startup work against postgres and redis
	startupTimeout = 15 * time.Second

	// how long shutdown waits for in-flight requests and the final flush
	shutdownTimeout = 10 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	server := &Server{
		config: cfg,
		hasher: auth.NewPasswordHasher(),
	}

	if err := server.initStorage(ctx); err != nil {
		return nil, err
	}

	if err := server.initBuffer(ctx); err != nil {
		server.closeStorage()
		return nil, err
	}

	server.sessions = sessions.NewStore()
	server.gate = auth.NewGate(server.sessions, cfg.SessionCookieName,
		auth.WithSecret(cfg.SessionSecret),
		auth.WithSecureCookies(cfg.IsProduction()),
	)

	server.archiver = buffer.NewArchiver(server.buffer, server.store.Conversations, cfg.MessageBlockSize)
	server.paginator = history.NewPaginator(server.store.Conversations)
	server.hub = ws.NewHub(server.archiver, cfg.BroadcastScope)
	logger.Info("broadcast broker configured",
		"scope", server.hub.Scope(),
		"block_size", server.archiver.BlockSize(),
	)

	if err := server.primeBuffers(ctx); err != nil {
		server.closeStorage()
		return nil, err
	}

	server.router = newRouter(cfg)

	if cfg.BrokerPort != "" && cfg.BrokerPort != cfg.Port {
		server.brokerRouter = newRouter(cfg)
	}

	if err := RegisterRoutes(server); err != nil {
		server.closeStorage()
		return nil, err
	}

	return server, nil
}

func (s *Server) initStorage(ctx context.Context) error {
	if s.config.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	store, err := storage.NewClient(ctx, s.config.DatabaseURL)
	if err != nil {
		return err
	}

	s.store = store
	logger.Info("storage ready", "durable", store.Durable())

	return nil
}

// picks the redis buffer when REDIS_URL is set, otherwise an in-memory one
func (s *Server) initBuffer(_ context.Context) error {
	if s.config.RedisURL == "" {
		logger.Warn("REDIS_URL not set, buffering messages in memory")
		s.buffer = buffer.NewMemoryBuffer()
		return nil
	}

	redisBuffer, err := buffer.NewRedisBuffer(s.config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to initialize redis buffer: %w", err)
	}

	s.redis = redisBuffer
	s.buffer = redisBuffer

	return nil
}

// gives every stored room a buffer so GET /chat lists it with an empty message list
func (s *Server) primeBuffers(ctx context.Context) error {
	list, err := s.store.Rooms.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	for _, room := range list {
		if err := s.buffer.Ensure(ctx, room.ID); err != nil {
			return fmt.Errorf("failed to prime buffer for room %s: %w", room.ID, err)
		}
	}

	logger.Info("room buffers primed", "rooms", len(list))

	return nil
}

// starts the hub loop and the archiver worker
func (s *Server) Start() {
	s.archiver.Start()
	go s.hub.Run()
}

// closes websocket clients, archives whatever is still buffered and releases storage
func (s *Server) Shutdown(ctx context.Context) {
	s.hub.Shutdown()

	if err := s.archiver.FlushAll(ctx); err != nil {
		logger.ErrorErr(err, "failed to flush buffers on shutdown")
	}

	s.archiver.Stop()
	s.sessions.Close()
	s.closeStorage()
}

// the redis client shared with the login limiter, nil without redis
func (s *Server) redisClient() *redis.Client {
	if s.redis == nil {
		return nil
	}

	return s.redis.Client()
}

func (s *Server) closeStorage() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.store != nil {
		s.store.Close()
	}
}

// gin.Default in development, recovery plus the slog request logger in production
func newRouter(cfg *config.Config) *gin.Engine {
	if !cfg.IsProduction() {
		return gin.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger())

	return router
}
