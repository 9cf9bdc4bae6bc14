package bridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/config"
)

// dialUpstream opens the WebSocket to the realtime AI service. The API
// key travels either in a standard Authorization header or, for hosting
// environments that cannot set headers on outbound upgrades, inside the
// subprotocol negotiation — the non-standard channel the upstream service
// accepts for browsers.
func dialUpstream(ctx context.Context, cfg config.UpstreamConfig) (*websocket.Conn, error) {
	endpoint, err := upstreamURL(cfg)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	header := http.Header{}

	switch cfg.CredentialMode {
	case config.CredentialModeSubprotocol:
		dialer.Subprotocols = []string{
			"realtime",
			"openai-insecure-api-key." + cfg.APIKey,
			"openai-beta.realtime-v1",
		}
	default:
		header.Set("Authorization", "Bearer "+cfg.APIKey)
		header.Set("OpenAI-Beta", "realtime=v1")
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("upstream handshake: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("upstream handshake: %w", err)
	}
	return conn, nil
}

func upstreamURL(cfg config.UpstreamConfig) (string, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse upstream url: %w", err)
	}
	if cfg.Model != "" {
		query := parsed.Query()
		query.Set("model", cfg.Model)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
