package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/roomcode"
	"github.com/lox/unoduel/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	config   *ServerConfig
	upgrader websocket.Upgrader
	hub      *Hub
	clock    quartz.Clock
	rng      randutil.Source
	codes    *roomcode.Generator
	logger   *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for timestamps and keepalives.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithRNG sets the source every deck is shuffled with.
func WithRNG(rng randutil.Source) Option {
	return func(s *Server) { s.rng = rng }
}

// WithCodeGenerator sets how room codes are generated.
func WithCodeGenerator(g *roomcode.Generator) Option {
	return func(s *Server) { s.codes = g }
}

// NewServer creates a new WebSocket server. config must already be valid.
func NewServer(config *ServerConfig, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			// Browser clients are served from anywhere.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock:  quartz.NewReal(),
		logger: logger.WithPrefix("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng, _ = randutil.NewFromOptionalSeed(nil)
	}

	registryOpts := []session.Option{session.WithRules(config.Rules())}
	if s.codes != nil {
		registryOpts = append(registryOpts, session.WithCodeGenerator(s.codes))
	}

	directory := player.NewDirectory()
	registry := session.NewRegistry(directory, s.rng, logger, registryOpts...)
	s.hub = NewHub(registry, directory, s.clock, logger)
	return s
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.GetServerAddress(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves HTTP on ln until ctx is cancelled, then
// shuts both down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.hub.Run(gctx)
	})

	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Stats returns the hub's current counts
func (s *Server) Stats(ctx context.Context) (Stats, error) {
	return s.hub.Stats(ctx)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	id := player.NewID()
	client := NewConnection(id, r.URL.Query().Get("name"), conn, s.hub, s.clock, s.config.GetPingInterval(), s.logger)
	if !s.hub.join(client) {
		_ = conn.Close()
		return
	}
	client.Start()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleStats reports connection and room counts
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.hub.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error("Failed to encode stats", "error", err)
	}
}
