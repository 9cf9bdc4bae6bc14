package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/config"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/observability"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/scenarios"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/tools"
)

const (
	maxClientPayloadBytes = 1 << 20
	pingInterval          = 15 * time.Second
	pongWait              = 45 * time.Second
	writeWait             = 10 * time.Second
	sendBufferSize        = 256
)

const (
	directionClientToUpstream = "client_to_upstream"
	directionUpstreamToClient = "upstream_to_client"
)

// Session bridges one client connection to one upstream realtime
// connection for the lifetime of a conversation. Each session is an
// isolated actor: its mutable state is touched only by its own read
// loops, and tearing down either connection tears down the whole session.
type Session struct {
	id       string
	userID   string
	scenario *scenarios.Scenario

	client     *websocket.Conn
	upstream   *websocket.Conn
	upstreamMu sync.Mutex

	// send carries outbound client frames; a single write loop drains it
	// so forwarded events and synthetic errors never interleave mid-frame.
	send chan []byte

	registry    *tools.Registry
	upstreamCfg config.UpstreamConfig
	sessionCfg  config.SessionConfig

	calls *callAccumulator

	logger  *slog.Logger
	metrics *observability.Metrics

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	started   time.Time
}

// New creates a session for an already-upgraded client connection. The
// scenario has been resolved by the caller; the upstream connection is
// established in Run.
func New(client *websocket.Conn, scenario *scenarios.Scenario, userID string, registry *tools.Registry, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Session {
	id := uuid.NewString()
	return &Session{
		id:          id,
		userID:      userID,
		scenario:    scenario,
		client:      client,
		send:        make(chan []byte, sendBufferSize),
		registry:    registry,
		upstreamCfg: cfg.Upstream,
		sessionCfg:  cfg.Session,
		calls:       newCallAccumulator(),
		logger:      logger.With("session_id", id, "scenario", scenario.ID, "user", userID),
		metrics:     metrics,
	}
}

// Run drives the session to completion: dial upstream, send the opening
// handshake, then relay in both directions until either side closes. It
// blocks until the session is torn down.
func (s *Session) Run(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = time.Now()
	s.metrics.ActiveSessions.Inc()
	defer s.close()

	upstream, err := dialUpstream(s.ctx, s.upstreamCfg)
	if err != nil {
		// The client connection is already accepted, so it can carry one
		// final error event before teardown. No retry.
		s.logger.Error("upstream connect failed", "error", err)
		s.metrics.UpstreamConnectFailures.Inc()
		_ = s.client.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.client.WriteMessage(websocket.TextMessage, errorEvent("could not connect to the conversation service"))
		return
	}
	s.upstream = upstream

	if err := s.configureUpstream(); err != nil {
		s.logger.Error("upstream configuration failed", "error", err)
		_ = s.client.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.client.WriteMessage(websocket.TextMessage, errorEvent("could not configure the conversation service"))
		return
	}
	s.logger.Info("session active")

	go s.clientWriteLoop()
	go s.pingLoop()
	go func() {
		s.upstreamReadLoop()
		// Pending call state is owned by the upstream read loop, so it
		// is discarded here, after the loop can no longer touch it.
		s.calls.reset()
		s.close()
	}()
	s.clientReadLoop()
}

// close tears the session down idempotently: both connections get a
// normal-closure frame and are closed. Either read loop exiting lands
// here; pending call state is discarded by the upstream read goroutine,
// never from here, since the accumulator belongs to that loop.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		deadline := time.Now().Add(writeWait)
		closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.client.WriteControl(websocket.CloseMessage, closeFrame, deadline)
		_ = s.client.Close()
		if s.upstream != nil {
			_ = s.upstream.WriteControl(websocket.CloseMessage, closeFrame, deadline)
			_ = s.upstream.Close()
		}
		s.metrics.ActiveSessions.Dec()
		s.metrics.SessionDuration.Observe(time.Since(s.started).Seconds())
		s.logger.Info("session closed", "duration", time.Since(s.started))
	})
}

// configureUpstream sends the three opening events in order: session
// configuration, the scenario's opening line as an assistant message, and
// a response request so the opening line is actually spoken.
func (s *Session) configureUpstream() error {
	instructions := s.sessionCfg.TutorRules + "\n\n" + s.scenario.Prompt

	update, err := sessionUpdateEvent(instructions, s.sessionCfg.Voice, s.scenario.Tools)
	if err != nil {
		return fmt.Errorf("build session update: %w", err)
	}
	if err := s.writeUpstream(update); err != nil {
		return err
	}

	opening, err := assistantMessageEvent(s.scenario.OpeningLine)
	if err != nil {
		return fmt.Errorf("build opening message: %w", err)
	}
	if err := s.writeUpstream(opening); err != nil {
		return err
	}
	return s.writeUpstream(responseCreateEvent())
}

// clientReadLoop relays client events upstream, enforcing the whitelist.
// Non-text frames and malformed payloads are dropped; disallowed event
// types get a synthetic error reply and the session stays active.
func (s *Session) clientReadLoop() {
	s.client.SetReadLimit(maxClientPayloadBytes)
	_ = s.client.SetReadDeadline(time.Now().Add(pongWait))
	s.client.SetPongHandler(func(string) error {
		return s.client.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := s.client.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		event, err := parseEnvelope(raw)
		if err != nil {
			s.logger.Debug("dropping malformed client payload", "error", err)
			continue
		}
		if !clientEventAllowed(event.Type) {
			s.metrics.EventsRejected.WithLabelValues(event.Type).Inc()
			s.logger.Warn("rejected client event", "event_type", event.Type)
			s.enqueueClient(errorEvent(fmt.Sprintf("event type %q is not allowed", event.Type)))
			continue
		}

		if err := s.writeUpstream(raw); err != nil {
			s.logger.Warn("upstream write failed", "error", err)
			return
		}
		s.metrics.EventsRelayed.WithLabelValues(directionClientToUpstream).Inc()
	}
}

// upstreamReadLoop forwards every upstream event to the client verbatim
// and routes function-call fragments through the accumulator. Interception
// never suppresses the client forward.
func (s *Session) upstreamReadLoop() {
	for {
		_, raw, err := s.upstream.ReadMessage()
		if err != nil {
			return
		}

		s.enqueueClient(raw)
		s.metrics.EventsRelayed.WithLabelValues(directionUpstreamToClient).Inc()

		event, err := parseEnvelope(raw)
		if err != nil {
			continue
		}
		switch event.Type {
		case eventFunctionCallDelta:
			s.calls.appendFragment(event.CallID, event.Name, event.Delta)
		case eventFunctionCallDone:
			s.handleCompletedCall(event)
		}
	}
}

// handleCompletedCall resolves the accumulated call, dispatches the tool,
// and feeds the result back into the conversation. Unparseable arguments
// and unknown tools both become failure outputs; neither ends the session.
func (s *Session) handleCompletedCall(event *envelope) {
	name, arguments := s.calls.complete(event.CallID, event.Name, event.Arguments)

	var result tools.Result
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		result = tools.Failure(fmt.Sprintf("could not parse tool arguments: %v", err))
		s.metrics.ToolExecutions.WithLabelValues(name, "error").Inc()
	} else {
		ctx := tools.WithScenarioID(s.ctx, s.scenario.ID)
		result = s.registry.Execute(ctx, name, json.RawMessage(arguments))
		status := "success"
		if !result.OK() {
			status = "error"
		}
		s.metrics.ToolExecutions.WithLabelValues(name, status).Inc()
	}
	s.logger.Info("tool call completed", "tool", name, "call_id", event.CallID, "success", result.OK())

	output, err := functionCallOutputEvent(event.CallID, result.Encode())
	if err != nil {
		s.logger.Error("encode tool output failed", "error", err)
		return
	}
	if err := s.writeUpstream(output); err != nil {
		s.logger.Warn("tool output write failed", "error", err)
		return
	}
	// Nudge the conversation past the tool result.
	_ = s.writeUpstream(responseCreateEvent())
}

func (s *Session) clientWriteLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.send:
			_ = s.client.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.client.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.cancel()
				return
			}
		}
	}
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.client.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Session) enqueueClient(data []byte) {
	select {
	case <-s.ctx.Done():
	case s.send <- data:
	default:
		s.logger.Warn("client send buffer full, dropping event")
	}
}

func (s *Session) writeUpstream(data []byte) error {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	_ = s.upstream.SetWriteDeadline(time.Now().Add(writeWait))
	return s.upstream.WriteMessage(websocket.TextMessage, data)
}
