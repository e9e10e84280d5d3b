// Package main is the entry point for the proscenium session service.
//
// The service provisions remote browser sessions near the caller: a
// timezone is resolved to a provider datacenter region, a session is
// created there over REST, a CDP connection parks it on the landing
// page, and the fullscreen live view URL is returned. Connected viewers
// follow session lifecycle and curtain state over a websocket stream.
//
// Configuration comes from environment variables (see internal/config);
// the only required settings are the provider credentials:
//
//	BROWSERBASE_API_KEY=... BROWSERBASE_PROJECT_ID=... ./server
//
// SIGINT or SIGTERM starts a graceful shutdown: the listener closes,
// tracked sessions are drained, and live remote sessions are released
// unless SHUTDOWN_RELEASE=false.
package main
