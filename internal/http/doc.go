// Package http provides the HTTP handlers for the session REST API.
//
// This package implements all HTTP endpoints using the Gin framework.
//
// Endpoints:
//   - Health: / and /health
//   - Sessions: /api/sessions, /api/sessions/:id, /api/sessions/:id/debug
//   - Metrics: /metrics/summary
//
// Session creation resolves the caller's timezone to a datacenter region,
// provisions a remote browser there, parks it on the landing page, and
// returns the fullscreen live view URL. Termination releases the session
// back to the provider; a failed release is reported, never retried.
//
// Example Usage:
//
//	handlers := http.NewHandlers(provisioner, sessions, metrics, logger)
//	router.POST("/api/sessions", handlers.CreateSession)
//	router.DELETE("/api/sessions/:id", handlers.TerminateSession)
package http
