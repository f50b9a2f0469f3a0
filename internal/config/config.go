package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Stop policies understood by the chat controller.
const (
	StopPolicyPreserve = "preserve"
	StopPolicyReplace  = "replace"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig
	Stream  StreamConfig
	Logging LogConfig
	Metrics MetricsConfig
	Sim     SimConfig
}

// APIConfig holds REST collaborator settings.
type APIConfig struct {
	BaseURL      string        `envconfig:"CHAT_API_URL" default:"http://127.0.0.1:8000"`
	Token        string        `envconfig:"CHAT_TOKEN"`
	Timeout      time.Duration `envconfig:"CHAT_HTTP_TIMEOUT" default:"30s"`
	RetryMax     int           `envconfig:"CHAT_HTTP_RETRIES" default:"3"`
	RateLimitRPS float64       `envconfig:"CHAT_HTTP_RPS" default:"0"`
}

// StreamConfig holds WebSocket and controller settings.
type StreamConfig struct {
	HandshakeTimeout time.Duration `envconfig:"CHAT_WS_HANDSHAKE_TIMEOUT" default:"10s"`
	AuthCloseCode    int           `envconfig:"CHAT_WS_AUTH_CLOSE_CODE" default:"1008"`
	StopPolicy       string        `envconfig:"CHAT_STOP_POLICY" default:"preserve"`
	StoppedNotice    string        `envconfig:"CHAT_STOPPED_NOTICE" default:"Generation stopped by user."`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	Output      string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// MetricsConfig holds the Prometheus listener address; empty disables it.
type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR"`
}

// SimConfig holds settings for the simulated backend.
type SimConfig struct {
	Addr       string        `envconfig:"SIM_ADDR" default:":8000"`
	Token      string        `envconfig:"SIM_TOKEN" default:"dev-token"`
	ChunkDelay time.Duration `envconfig:"SIM_CHUNK_DELAY" default:"25ms"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:  "http://127.0.0.1:8000",
			Timeout:  30 * time.Second,
			RetryMax: 3,
		},
		Stream: StreamConfig{
			HandshakeTimeout: 10 * time.Second,
			AuthCloseCode:    1008,
			StopPolicy:       StopPolicyPreserve,
			StoppedNotice:    "Generation stopped by user.",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			Output:      "stderr",
		},
		Sim: SimConfig{
			Addr:       ":8000",
			Token:      "dev-token",
			ChunkDelay: 25 * time.Millisecond,
		},
	}
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: CHAT_API_URL must not be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid CHAT_API_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: CHAT_API_URL must be http or https, got %q", u.Scheme)
	}
	switch c.Stream.StopPolicy {
	case StopPolicyPreserve, StopPolicyReplace:
	default:
		return fmt.Errorf("config: unknown stop policy %q", c.Stream.StopPolicy)
	}
	if c.API.RetryMax < 0 {
		return errors.New("config: CHAT_HTTP_RETRIES must not be negative")
	}
	return nil
}
