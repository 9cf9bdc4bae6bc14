package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/config"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/observability"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/scenarios"
	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/tools"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Upstream.APIKey = "test-key"
	for _, fn := range mutate {
		fn(cfg)
	}

	catalog, err := scenarios.NewEmbeddedCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	server := NewServer(cfg, catalog, tools.NewRegistry(), logger, metrics)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("status field = %v, want ok", payload["status"])
	}
}

func TestScenarioIndex(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/scenarios")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var payload struct {
		Scenarios []scenarios.Summary `json:"scenarios"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(payload.Scenarios) == 0 {
		t.Fatal("index is empty")
	}
	for _, s := range payload.Scenarios {
		if s.ID == "" || s.Title == "" {
			t.Errorf("incomplete index entry: %+v", s)
		}
	}
}

func TestScenarioLookup(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/scenarios/cafe-ordering")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/api/scenarios/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.StatusCode)
	}
}

// A session request for an unknown scenario must be rejected before any
// duplex channel is established.
func TestWSRejectsUnknownScenarioBeforeUpgrade(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws?scenario=no-such-lesson", nil)
	if err == nil {
		t.Fatal("dial succeeded for unknown scenario")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %v, want 404 before upgrade", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	if err == nil {
		t.Fatal("dial succeeded without scenario parameter")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handshake response = %v, want 400 before upgrade", resp)
	}
}

// The WS upgrade enforces the same origin policy as the REST surface.
func TestWSOriginPolicy(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"https://app.example.com"}
		// A dead upstream keeps the accepted-origin session short-lived.
		cfg.Upstream.URL = "ws://127.0.0.1:9"
		cfg.Upstream.HandshakeTimeout = time.Second
	})
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?scenario=cafe-ordering"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{
		"Origin": []string{"https://evil.example.com"},
	})
	if err == nil {
		t.Fatal("dial succeeded from a disallowed origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("handshake response = %v, want 403 for disallowed origin", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{
		"Origin": []string{"https://app.example.com"},
	})
	if err != nil {
		t.Fatalf("dial from allowed origin failed: %v", err)
	}
	_ = conn.Close()
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/scenarios", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow-origin = %q, want echoed origin under wildcard config", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
