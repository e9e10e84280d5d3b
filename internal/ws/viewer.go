package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/curtain"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/session"
	"github.com/prosceniumhq/proscenium/internal/utils"
)

const (
	// writeWait bounds a single outbound frame write.
	writeWait = 10 * time.Second

	// maxMessageBytes bounds inbound frames; viewer messages are tiny.
	maxMessageBytes = 4 << 10

	// defaultPingInterval drives liveness pings when configuration leaves
	// the interval unset.
	defaultPingInterval = 30 * time.Second

	// sendBuffer is the per-viewer outbound queue length.
	sendBuffer = 16
)

// viewer is one connected watcher of one session. It owns a curtain machine
// seeded from the session record and driven by the viewer's visibility
// reports; a released event from the registry completes it.
type viewer struct {
	h    *Handler
	conn *websocket.Conn
	rec  *session.Record
	log  *logging.Logger

	machine *curtain.Machine

	mu     sync.Mutex
	inputs curtain.Inputs

	send chan serverMessage
	done chan struct{}
	once sync.Once
}

func newViewer(h *Handler, conn *websocket.Conn, rec *session.Record, log *logging.Logger) *viewer {
	v := &viewer{
		h:    h,
		conn: conn,
		rec:  rec,
		log:  log,
		send: make(chan serverMessage, sendBuffer),
		done: make(chan struct{}),
	}
	v.machine = curtain.New(curtain.Config{
		OpenDelay:  h.curtain.OpenDelay,
		TravelTime: h.curtain.TravelTime,
		OnStop:     v.onStop,
		OnRestart:  v.onRestart,
	})
	v.inputs = curtain.Inputs{
		SessionURL:     rec.Session.SessionURL,
		InitialMessage: rec.InitialMessage,
	}
	return v
}

// run seeds the machine, starts the pumps, and reads until the connection
// drops. It returns once everything is torn down.
func (v *viewer) run() {
	transitions, cancelTransitions := v.machine.Subscribe()
	defer cancelTransitions()
	events, cancelEvents := v.h.sessions.Subscribe()
	defer cancelEvents()

	// Absorb the session URL without emitting transitions; the machine is
	// closed and stays closed until the viewer reports itself visible.
	v.machine.Update(v.snapshotInputs())

	// The record was fetched before the event subscription existed, so a
	// release can slip between the two. Complete immediately rather than
	// waiting for an event that already fired.
	if _, ok := v.h.sessions.Get(v.rec.Session.ID); !ok {
		v.complete()
	}

	go v.writeLoop()
	v.enqueue(curtainMessage(v.machine.View()))
	go v.eventLoop(transitions, events)

	v.readLoop()
	v.close()
}

// close tears the viewer down once: the machine stops ticking, the pumps
// exit, and the connection drops.
func (v *viewer) close() {
	v.once.Do(func() {
		close(v.done)
		v.machine.Close()
		_ = v.conn.Close()
	})
}

func (v *viewer) snapshotInputs() curtain.Inputs {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputs
}

// complete marks the session over. The machine draws the curtain and the
// next view carries the completion overlay.
func (v *viewer) complete() {
	v.mu.Lock()
	if !v.inputs.Completed {
		v.inputs.Completed = true
		if v.inputs.SessionTime == 0 {
			v.inputs.SessionTime = int(time.Since(v.rec.AddedAt).Seconds())
		}
	}
	in := v.inputs
	v.mu.Unlock()
	v.machine.Update(in)
}

// enqueue queues msg for the writer. It blocks only while the writer is
// alive and its buffer full; a torn-down viewer drops the message instead.
func (v *viewer) enqueue(msg serverMessage) {
	select {
	case v.send <- msg:
	case <-v.done:
	}
}

func (v *viewer) eventLoop(transitions <-chan curtain.Transition, events <-chan session.Event) {
	for {
		select {
		case <-v.done:
			return

		case tr, ok := <-transitions:
			if !ok {
				return
			}
			if v.h.metrics != nil {
				v.h.metrics.RecordCurtainTransition(string(tr.From), string(tr.To))
			}
			v.enqueue(curtainMessage(v.machine.View()))

		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.SessionID != v.rec.Session.ID {
				continue
			}
			v.enqueue(serverMessage{Type: TypeSession, Kind: string(evt.Type), SessionID: evt.SessionID})
			if evt.Type == session.EventReleased {
				v.complete()
			}
		}
	}
}

func (v *viewer) readLoop() {
	deadline := 2 * v.h.ping
	v.conn.SetReadLimit(maxMessageBytes)
	_ = v.conn.SetReadDeadline(time.Now().Add(deadline))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				v.log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = v.conn.SetReadDeadline(time.Now().Add(deadline))

		var msg clientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			v.enqueue(errorMessage("malformed message"))
			continue
		}
		v.handle(msg)
	}
}

func (v *viewer) handle(msg clientMessage) {
	if v.h.metrics != nil {
		v.h.metrics.RecordWSMessage("in", msg.Type)
	}

	switch msg.Type {
	case TypeHello:
		v.mu.Lock()
		v.inputs.Visible = msg.Visible
		if msg.Message != "" {
			v.inputs.InitialMessage = utils.SanitizeMessage(msg.Message)
		}
		if msg.SessionTime > 0 {
			v.inputs.SessionTime = msg.SessionTime
		}
		in := v.inputs
		v.mu.Unlock()
		v.machine.Update(in)

	case TypeVisibility:
		v.mu.Lock()
		v.inputs.Visible = msg.Visible
		in := v.inputs
		v.mu.Unlock()
		v.machine.Update(in)

	case TypeStop:
		v.machine.Stop()

	case TypeRestart:
		v.machine.Restart()

	case TypePing:
		v.enqueue(serverMessage{Type: TypePong})

	default:
		v.enqueue(errorMessage("unknown message type"))
	}
}

// onStop runs on the reader goroutine when the viewer sends stop. Releasing
// synchronously keeps at most one release in flight per viewer.
func (v *viewer) onStop() {
	v.log.Info("viewer requested stop")
	if err := v.h.stopSession(v.rec.Session.ID); err != nil {
		v.log.Error("stop failed", zap.Error(err))
		v.enqueue(errorMessage(err.Error()))
	}
}

// onRestart tells the client to relaunch. A restart means a fresh session,
// which only the client can request.
func (v *viewer) onRestart() {
	v.enqueue(serverMessage{Type: TypeRestartRequested})
}

func (v *viewer) writeLoop() {
	ticker := time.NewTicker(v.h.ping)
	defer ticker.Stop()

	for {
		select {
		case <-v.done:
			_ = v.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case msg := <-v.send:
			if msg.Timestamp == 0 {
				msg.Timestamp = time.Now().Unix()
			}
			data, err := sonic.Marshal(msg)
			if err != nil {
				v.log.Error("message encode failed", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				v.close()
				return
			}
			if v.h.metrics != nil {
				v.h.metrics.RecordWSMessage("out", msg.Type)
			}

		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				v.close()
				return
			}
		}
	}
}
