package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main configuration structure for the tutor gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Session   SessionConfig   `yaml:"session"`
	Scenarios ScenariosConfig `yaml:"scenarios"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	HTTPPort int    `yaml:"http_port"`
}

// UpstreamConfig describes the realtime AI service the gateway bridges to.
type UpstreamConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`

	APIKey string `yaml:"api_key"`

	// CredentialMode selects how the API key reaches upstream: "header"
	// sends a standard Authorization header, "subprotocol" embeds the key
	// in the WebSocket subprotocol negotiation for hosts that cannot set
	// custom headers on outbound upgrades.
	CredentialMode string `yaml:"credential_mode"`

	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

type SessionConfig struct {
	Voice string `yaml:"voice"`

	// TutorRules is prepended to every scenario's system prompt.
	TutorRules string `yaml:"tutor_rules"`
}

type ScenariosConfig struct {
	// Dir optionally overrides the embedded scenario catalog with YAML
	// files loaded from disk at startup.
	Dir string `yaml:"dir"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	CredentialModeHeader      = "header"
	CredentialModeSubprotocol = "subprotocol"
)

// DefaultTutorRules are the global conversation rules merged with every
// scenario prompt before the upstream session is configured.
const DefaultTutorRules = `You are a friendly, patient Spanish tutor. Speak mostly in Spanish at the student's level, switching to English only to explain mistakes. Keep turns short and conversational. Gently correct errors, then continue the role-play. When the conversation reaches a natural end, call the grading tool with your assessment.`

// Default returns a configuration populated with sensible defaults.
// Values from a loaded file are layered on top of this.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Upstream: UpstreamConfig{
			URL:              "wss://api.openai.com/v1/realtime",
			Model:            "gpt-4o-realtime-preview",
			CredentialMode:   CredentialModeHeader,
			HandshakeTimeout: 15 * time.Second,
		},
		Session: SessionConfig{
			Voice:      "alloy",
			TutorRules: DefaultTutorRules,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort)
	}
	if strings.TrimSpace(c.Upstream.URL) == "" {
		return fmt.Errorf("upstream.url is required")
	}
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		return fmt.Errorf("upstream.api_key is required (set OPENAI_API_KEY)")
	}
	switch c.Upstream.CredentialMode {
	case CredentialModeHeader, CredentialModeSubprotocol:
	default:
		return fmt.Errorf("upstream.credential_mode %q must be %q or %q",
			c.Upstream.CredentialMode, CredentialModeHeader, CredentialModeSubprotocol)
	}
	return nil
}
