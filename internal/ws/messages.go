package ws

import (
	"github.com/prosceniumhq/proscenium/internal/curtain"
)

// Client message types.
const (
	TypeHello      = "hello"
	TypeVisibility = "visibility"
	TypeStop       = "stop"
	TypeRestart    = "restart"
	TypePing       = "ping"
)

// Server message types.
const (
	TypeCurtain          = "curtain"
	TypeSession          = "session"
	TypeRestartRequested = "restart_requested"
	TypePong             = "pong"
	TypeError            = "error"
)

// clientMessage is the envelope for everything a viewer sends. Hello carries
// the viewer's initial visibility plus optional overrides for the overlay
// message and session clock; visibility carries only the flag.
type clientMessage struct {
	Type        string `json:"type"`
	Visible     bool   `json:"visible"`
	Message     string `json:"message,omitempty"`
	SessionTime int    `json:"sessionTime,omitempty"`
}

// serverMessage is the envelope for everything sent to a viewer. Fields are
// populated per type: curtain messages carry State and View, session messages
// carry Kind and SessionID, error messages carry Message.
type serverMessage struct {
	Type      string        `json:"type"`
	State     curtain.State `json:"state,omitempty"`
	View      *curtain.View `json:"view,omitempty"`
	Kind      string        `json:"kind,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

func curtainMessage(view curtain.View) serverMessage {
	return serverMessage{Type: TypeCurtain, State: view.State, View: &view}
}

func errorMessage(msg string) serverMessage {
	return serverMessage{Type: TypeError, Message: msg}
}
