package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mdlive/mdlive/internal/domain/entities"
	"github.com/mdlive/mdlive/internal/domain/ports"
	"github.com/mdlive/mdlive/internal/domain/services"
)

const (
	liveReloadPath   = "/__livereload"
	liveReloadWSPath = "/__livereload/ws"
)

// Server serves rendered markdown pages, raw assets, and the live-reload
// endpoints over one listener.
type Server struct {
	resolver ports.PathResolver
	cache    ports.RenderCache
	hub      *services.ReloadHub
	config   *entities.Config
	logger   *HTTPLogger
	maxHold  time.Duration

	mu      sync.Mutex
	server  *http.Server
	running bool
}

// NewServer creates a new HTTP server.
// config must not be nil.
func NewServer(resolver ports.PathResolver, cache ports.RenderCache, hub *services.ReloadHub, config *entities.Config) *Server {
	if config == nil {
		panic("server config cannot be nil")
	}

	return &Server{
		resolver: resolver,
		cache:    cache,
		hub:      hub,
		config:   config,
		logger:   NewHTTPLoggerWithLevel("server", config.Logging.GetLevel()),
		maxHold:  config.Watcher.GetMaxHold(),
	}
}

// Start binds the listener and begins serving. A bind failure is returned
// synchronously so the caller can exit non-zero.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	handler := s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.Server.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	s.server = &http.Server{
		Addr:    addr,
		Handler: c.Handler(handler),
		// The write timeout has to outlast a held live-reload poll.
		ReadTimeout:  s.config.Server.GetReadTimeout(),
		WriteTimeout: s.config.Server.GetWriteTimeout() + s.maxHold,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Info("serving %s at http://%s", s.resolver.Root(), addr)
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// setupRoutes configures the router and middleware chain
func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(liveReloadWSPath, s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc(liveReloadPath, s.handleLiveReload).Methods(http.MethodGet)
	r.PathPrefix("/static/").HandlerFunc(s.handleStatic).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(s.handlePage).Methods(http.MethodGet, http.MethodHead)

	handler := securityHeadersMiddleware(r)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}
