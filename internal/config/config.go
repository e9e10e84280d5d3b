package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Browserbase BrowserbaseConfig
	Session     SessionConfig
	Landing     LandingConfig
	Curtain     CurtainConfig
	WS          WSConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// CORSOrigins lists the browser origins allowed to call the API;
	// "*" allows any.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// BrowserbaseConfig holds credentials and endpoint for the session provider.
type BrowserbaseConfig struct {
	APIURL    string `envconfig:"BROWSERBASE_API_URL" default:"https://api.browserbase.com"`
	APIKey    string `envconfig:"BROWSERBASE_API_KEY"`
	ProjectID string `envconfig:"BROWSERBASE_PROJECT_ID"`
}

// Validate reports whether the provider credentials are usable.
func (c BrowserbaseConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BROWSERBASE_API_KEY is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("BROWSERBASE_PROJECT_ID is required")
	}
	return nil
}

// SessionConfig holds per-session provisioning knobs.
type SessionConfig struct {
	// TimeoutSeconds is the provider-side session lifetime.
	TimeoutSeconds int `envconfig:"SESSION_TIMEOUT" default:"600"`
	// KeepAlive keeps the remote browser running between CDP connections.
	KeepAlive bool `envconfig:"SESSION_KEEP_ALIVE" default:"true"`
	// Proxies routes session traffic through the provider proxy pool.
	Proxies bool `envconfig:"SESSION_PROXIES" default:"true"`
	// ReleaseOnShutdown releases live remote sessions during graceful
	// shutdown instead of letting them expire server-side.
	ReleaseOnShutdown bool `envconfig:"SHUTDOWN_RELEASE" default:"true"`
}

// LandingConfig holds the landing page every new session is parked on.
type LandingConfig struct {
	URL          string        `envconfig:"LANDING_URL" default:"https://www.prosceniumhq.com/welcome"`
	ProbeEnabled bool          `envconfig:"LANDING_PROBE_ENABLED" default:"true"`
	ProbeTimeout time.Duration `envconfig:"LANDING_PROBE_TIMEOUT" default:"10s"`
}

// CurtainConfig holds the reveal animation timings.
type CurtainConfig struct {
	OpenDelay  time.Duration `envconfig:"CURTAIN_OPEN_DELAY" default:"1s"`
	TravelTime time.Duration `envconfig:"CURTAIN_TRAVEL_TIME" default:"800ms"`
}

// WSConfig holds websocket streaming configuration.
type WSConfig struct {
	PingInterval time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
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
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Browserbase: BrowserbaseConfig{
			APIURL: "https://api.browserbase.com",
		},
		Session: SessionConfig{
			TimeoutSeconds:    600,
			KeepAlive:         true,
			Proxies:           true,
			ReleaseOnShutdown: true,
		},
		Landing: LandingConfig{
			URL:          "https://www.prosceniumhq.com/welcome",
			ProbeEnabled: true,
			ProbeTimeout: 10 * time.Second,
		},
		Curtain: CurtainConfig{
			OpenDelay:  time.Second,
			TravelTime: 800 * time.Millisecond,
		},
		WS: WSConfig{
			PingInterval: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
