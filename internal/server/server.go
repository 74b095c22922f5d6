package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/socket-games/server/internal/config"
	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten for production deployments
	},
	EnableCompression: false,
}

// Server ties the HTTP/WebSocket gateway to the room coordinator.
type Server struct {
	config   *config.Config
	redis    *redis.Client
	store    *storage.RedisStore
	registry *engine.Registry
	manager  *Manager
	handler  *Handler

	httpServer *http.Server
}

// NewServer wires a server around a registry with games already
// registered. A failed Redis connection degrades to running without the
// room mirror.
func NewServer(cfg *config.Config, registry *engine.Registry) *Server {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var store *storage.RedisStore
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, running without room mirror: %v", err)
		rdb.Close()
		rdb = nil
	} else {
		store = storage.NewRedisStore(rdb)
	}

	s := &Server{
		config:   cfg,
		redis:    rdb,
		store:    store,
		registry: registry,
	}
	s.manager = NewManager(registry, store, cfg)
	s.handler = NewHandler(s.manager)
	return s
}

// Manager exposes the room coordinator.
func (s *Server) Manager() *Manager {
	return s.manager
}

// Start serves HTTP until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and closes the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.redis != nil {
		s.redis.Close()
	}
	return err
}

// handleWebSocket upgrades a connection and starts its pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s, conn)
	s.manager.Register(client)
	log.Printf("client %s connected", client.ID())

	go client.ReadPump()
	go client.WritePump()
}
