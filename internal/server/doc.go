// Package server assembles and runs the service.
//
// New wires the full dependency graph: provider REST client, CDP
// navigator, provisioning pipeline, session manager, landing prober,
// REST handlers, and the websocket stream, all sharing one logger and
// one prometheus registry. Routes and the middleware chain (recovery,
// metrics, request ids, CORS, optional rate limiting) are registered
// here so the endpoint surface lives in one place.
//
// Lifecycle:
//  1. New validates provider credentials and builds the router.
//  2. Start fires the boot-time landing probe and serves until the
//     listener fails or Shutdown is called.
//  3. Shutdown stops accepting requests, drains tracked sessions, and
//     releases live remote sessions when configured to.
//
// Example Usage:
//
//	cfg, _ := config.Load()
//	srv, err := server.New(cfg, log)
//	if err != nil {
//	    log.Fatal("boot failed", zap.Error(err))
//	}
//	go srv.Start()
package server
