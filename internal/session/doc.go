// Package session tracks the browser sessions the service currently owns.
//
// The manager is the single source of truth for which sessions are live.
// HTTP handlers add and remove records; viewer streams subscribe to the
// event hub to learn when the session they are showing goes away. Nothing
// here persists: a session that the process loses is a session the
// provider will time out on its own.
package session
