// Package ws streams curtain and lifecycle state to session viewers.
//
// Each connection on GET /ws/sessions/:id hosts its own curtain machine,
// so two tabs watching the same session animate independently: one can be
// hidden with its curtain drawn while the other is open. The machine is
// seeded from the session record; the viewer drives it with visibility
// reports, and a released event from the registry completes it.
//
// Client messages:
//   - hello: initial visibility plus optional overlay message and clock
//   - visibility: tab shown or hidden
//   - stop: release the session
//   - restart: ask for a relaunch
//   - ping: keep-alive
//
// Server messages:
//   - curtain: render policy snapshot, sent on every transition
//   - session: lifecycle event for the watched session
//   - restart_requested, pong, error
package ws
