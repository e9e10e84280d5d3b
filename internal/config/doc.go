// Package config provides 12-factor configuration management for the
// session stage service.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Browserbase: provider endpoint and credentials
//   - Session: provisioning knobs (timeout, keep-alive, proxies)
//   - Landing: landing page URL and startup probe
//   - Curtain: reveal animation timings
//   - WS: websocket streaming settings
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - BROWSERBASE_API_URL, BROWSERBASE_API_KEY, BROWSERBASE_PROJECT_ID
//   - SESSION_TIMEOUT, SESSION_KEEP_ALIVE, SESSION_PROXIES, SHUTDOWN_RELEASE
//   - LANDING_URL, LANDING_PROBE_ENABLED, LANDING_PROBE_TIMEOUT
//   - CURTAIN_OPEN_DELAY, CURTAIN_TRAVEL_TIME, WS_PING_INTERVAL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
