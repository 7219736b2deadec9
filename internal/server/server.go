// Package server exposes the shop registry to game clients over websockets.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/shoptiles/internal/config"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/store"
	"github.com/gravitas-games/shoptiles/pkg/models"
)

// TokenValidator authenticates a connecting client
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Player, error)
}

// Server represents the shop server
type Server struct {
	config    *config.Config
	session   *Session
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	validator TokenValidator
	redis     *redis.Client
	monitor   *logging.Monitor

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance. Redis, when enabled, backs both the
// token blacklist and the stock store.
func New(cfg *config.Config, opts SessionOptions) (*Server, error) {
	m := opts.Monitor
	m.Infof("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		m.Infof("Connected to Redis")
		if opts.Store == nil {
			ttl := time.Duration(cfg.Redis.StockTTLHrs) * time.Hour
			opts.Store = store.NewRedisStore(redisClient, cfg.Redis.StockPrefix, ttl)
		}
	}

	validator, err := NewJWTValidator(ctx, cfg, redisClient, m)
	if err != nil {
		cancel()
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
	}

	srv := newServer(ctx, cancel, cfg, validator, NewSession("main", opts), m)
	srv.redis = redisClient
	m.Infof("Server initialized successfully")
	return srv, nil
}

func newServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, v TokenValidator, session *Session, m *logging.Monitor) *Server {
	return &Server{
		config:      cfg,
		session:     session,
		validator:   v,
		monitor:     m,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"access_token"},
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Add proper origin checking in production
				return true
			},
		},
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.monitor.Infof("WebSocket endpoint: ws://%s/ws", addr)
	s.monitor.Infof("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.monitor.Infof("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.monitor.Warnf("HTTP server shutdown error: %v", err)
		}
	}

	s.connMu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.monitor.Warnf("Redis close error: %v", err)
		}
	}

	s.monitor.Infof("Server shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.monitor.Debugf("New WebSocket connection request from %s", r.RemoteAddr)

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		s.monitor.Debugf("Missing JWT token from %s", r.RemoteAddr)
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	player, err := s.validator.ValidateToken(r.Context(), tokenString)
	if err != nil {
		s.monitor.Infof("Invalid JWT token from %s: %v", r.RemoteAddr, err)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	s.monitor.Infof("Authenticated user: %s (%s) from %s", player.Username, player.ID, r.RemoteAddr)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.monitor.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(ws, s, player)

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	// Handle connection (blocking)
	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	s.monitor.Infof("WebSocket connection closed: %s (%s)", player.Username, r.RemoteAddr)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","shops":%d,"players":%d}`, s.session.registry.Len(), s.session.PlayerCount())
}
