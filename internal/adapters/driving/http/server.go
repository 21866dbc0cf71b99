package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/axchat/internal/core/domain"
	"github.com/custodia-labs/axchat/internal/core/ports/driving"
)

// Server is the JSON API over the chat, index and file services.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux

	chatService  driving.ChatService
	indexService driving.IndexService
	fileService  driving.FileService

	enabled bool
	zones   domain.ZoneConfig
}

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	// Enabled is the deploy gate. When false every /api/axchat route
	// answers with the disabled error.
	Enabled bool

	Zones domain.ZoneConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    8787,
		Enabled: true,
	}
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	indexService driving.IndexService,
	fileService driving.FileService,
) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		chatService:  chatService,
		indexService: indexService,
		fileService:  fileService,
		enabled:      cfg.Enabled,
		zones:        cfg.Zones,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	scope := NewScopeMiddleware(s.enabled, s.zones)
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()

	wrap := func(h http.HandlerFunc) http.Handler {
		return recovery.Handler(logging.Handler(scope.Resolve(h)))
	}

	// Health endpoint (no scope resolution, not behind the gate)
	s.router.HandleFunc("GET /health", s.handleHealth)

	s.router.Handle("POST /api/axchat/query", wrap(s.handleQuery))
	s.router.Handle("GET /api/axchat/search", wrap(s.handleSearch))
	s.router.Handle("GET /api/axchat/status", wrap(s.handleStatus))
	s.router.Handle("POST /api/axchat/reindex", wrap(s.handleReindex))
	s.router.Handle("GET /api/axchat/file", wrap(s.handleFile))
	s.router.Handle("POST /api/axchat/warmup", wrap(s.handleWarmup))
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server with graceful shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
