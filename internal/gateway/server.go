// Package gateway exposes the HTTP surface that feeds the session bridge:
// health check, scenario listing, and the WebSocket upgrade endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/config"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/observability"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/scenarios"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/tools"
)

// Server hosts the gateway's HTTP endpoints and spawns one session bridge
// per accepted WebSocket connection.
type Server struct {
	config   *config.Config
	catalog  *scenarios.Catalog
	registry *tools.Registry
	logger   *slog.Logger
	metrics  *observability.Metrics

	httpServer *http.Server
	startTime  time.Time
}

// NewServer wires the gateway from its shared, read-only collaborators.
func NewServer(cfg *config.Config, catalog *scenarios.Catalog, registry *tools.Registry, logger *slog.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		config:    cfg,
		catalog:   catalog,
		registry:  registry,
		logger:    logger,
		metrics:   metrics,
		startTime: time.Now(),
	}
}

// Handler builds the route table. Exposed separately from Start so tests
// can mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/scenarios", s.handleScenarioIndex)
	mux.HandleFunc("GET /api/scenarios/{id}", s.handleScenario)
	mux.HandleFunc("/ws", s.handleWS)
	return corsMiddleware(s.config.CORS.AllowedOrigins, mux)
}

// Start begins serving HTTP and blocks until the listener fails or the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.HTTPPort)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	s.httpServer = server

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("gateway listening", "addr", addr)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown error", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime_ms": time.Since(s.startTime).Milliseconds(),
	})
}

func (s *Server) handleScenarioIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": s.catalog.List(),
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	scenario, ok := s.catalog.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("unknown scenario %q", id),
		})
		return
	}
	writeJSON(w, http.StatusOK, scenario)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck
}
