package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/bridge"
)

// upgrader enforces the same origin policy as the REST surface's CORS
// middleware. Requests without an Origin header (non-browser clients)
// are accepted.
func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  8192,
		WriteBufferSize: 8192,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return originAllowed(s.config.CORS.AllowedOrigins, origin)
		},
	}
}

// handleWS validates the session request and hands the upgraded
// connection to a new session bridge. Unknown scenarios are rejected
// before the upgrade, so the client never sees a half-open session.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	scenarioID := strings.TrimSpace(r.URL.Query().Get("scenario"))
	if scenarioID == "" {
		http.Error(w, "scenario query parameter is required", http.StatusBadRequest)
		return
	}
	scenario, ok := s.catalog.Get(scenarioID)
	if !ok {
		http.Error(w, "unknown scenario: "+scenarioID, http.StatusNotFound)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		userID = "anonymous"
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	// Run blocks in the handler goroutine for the lifetime of the session,
	// matching the one-actor-per-connection model.
	session := bridge.New(conn, scenario, userID, s.registry, s.config, s.logger, s.metrics)
	session.Run(context.Background())
}
