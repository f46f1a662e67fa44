package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/ports/driven"
	"github.com/heyconcierge/pms-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	connectionService driving.ConnectionService
	syncService       driving.SyncService
	webhookService    driving.WebhookService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	Version   string
	JWTSecret []byte
	Logger    *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	connectionService driving.ConnectionService,
	syncService driving.SyncService,
	webhookService driving.WebhookService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		logger:            logger,
		connectionService: connectionService,
		syncService:       syncService,
		webhookService:    webhookService,
		taskQueue:         taskQueue,
		db:                db,
		redisClient:       redisClient,
	}

	logging := NewLoggingMiddleware(logger)
	recovery := NewRecoveryMiddleware(logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg.JWTSecret)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(jwtSecret []byte) {
	authMiddleware := NewAuthMiddleware(jwtSecret)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Webhook endpoint (no auth; providers sign their payloads instead)
	s.router.HandleFunc("POST /api/v1/pms/{provider}/webhook", s.handleWebhook)

	// Provider catalog
	s.router.Handle("GET /api/v1/pms/providers",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListProviders)))

	// Connection lifecycle
	s.router.Handle("POST /api/v1/pms/connections",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleConnect)))
	s.router.Handle("GET /api/v1/pms/connections",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListConnections)))
	s.router.Handle("GET /api/v1/pms/connections/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetConnection)))
	s.router.Handle("DELETE /api/v1/pms/connections/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDisconnect)))

	// Sync
	s.router.Handle("POST /api/v1/pms/connections/{id}/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTriggerSync)))
	s.router.Handle("GET /api/v1/pms/connections/{id}/sync-results",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSyncResults)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
