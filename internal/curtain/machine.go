// Package curtain drives the curtain-reveal animation that gates the live
// session view. A four-state machine derives its state from three
// caller-supplied signals (component visibility, session URL presence, and
// completion) plus elapsed time since the last transition. It performs no
// network I/O and owns the only timers involved, so a caller can never race
// it into an inconsistent state.
package curtain

import (
	"sync"
	"time"
)

// State is the curtain position. Transitions only ever move
// closed → opening → open → closing within one session; completion forces
// closing from any state.
type State string

const (
	StateClosed  State = "closed"
	StateOpening State = "opening"
	StateOpen    State = "open"
	StateClosing State = "closing"
)

const (
	// DefaultOpenDelay keeps a freshly provisioned session behind the closed
	// curtain briefly, masking provisioning jitter before the reveal starts.
	DefaultOpenDelay = time.Second

	// DefaultTravelTime matches the curtain's animated travel from parted to
	// fully open.
	DefaultTravelTime = 800 * time.Millisecond

	// DefaultCompletionMessage is shown on the completion overlay.
	DefaultCompletionMessage = "Your browser session has ended."
)

// Config tunes a Machine. Zero values fall back to the defaults above.
type Config struct {
	OpenDelay         time.Duration
	TravelTime        time.Duration
	CompletionMessage string

	// OnStop and OnRestart run synchronously when Stop or Restart is called.
	// Neither takes arguments nor returns a value; the host decides what the
	// action means.
	OnStop    func()
	OnRestart func()
}

func (c *Config) applyDefaults() {
	if c.OpenDelay <= 0 {
		c.OpenDelay = DefaultOpenDelay
	}
	if c.TravelTime <= 0 {
		c.TravelTime = DefaultTravelTime
	}
	if c.CompletionMessage == "" {
		c.CompletionMessage = DefaultCompletionMessage
	}
}

// Inputs is the signal set the machine derives its state from. Visible,
// SessionURL, and Completed drive transitions; InitialMessage and SessionTime
// are carried through to the rendered view unchanged.
type Inputs struct {
	Visible        bool
	SessionURL     string
	Completed      bool
	InitialMessage string
	SessionTime    int
}

// Transition is one state change, delivered to subscribers in order.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// Machine is the visibility state machine. All methods are safe for
// concurrent use; timer callbacks serialize through the same mutex as
// Update, and a generation counter voids any timer that was scheduled
// before the most recent input change.
type Machine struct {
	cfg Config

	mu      sync.Mutex
	state   State
	inputs  Inputs
	started bool // inputs have been applied at least once
	closed  bool

	// pending is the single owned timer slot: at most one scheduled
	// transition exists at a time, and it is stopped before anything new is
	// scheduled. gen invalidates callbacks from stopped timers that had
	// already fired.
	pending *time.Timer
	gen     uint64

	subs map[chan Transition]struct{}
}

// New returns a Machine in the closed state.
func New(cfg Config) *Machine {
	cfg.applyDefaults()
	return &Machine{
		cfg:   cfg,
		state: StateClosed,
		subs:  make(map[chan Transition]struct{}),
	}
}

// State returns the current curtain state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Update applies a new input set. It is a no-op unless the driving triple
// (Visible, SessionURL, Completed) actually changed; the pass-through fields
// are always absorbed. Any pending scheduled transition is cancelled before
// a new one is scheduled, so only the most recent schedule is ever honored.
func (m *Machine) Update(in Inputs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	same := m.started &&
		m.inputs.Visible == in.Visible &&
		m.inputs.SessionURL == in.SessionURL &&
		m.inputs.Completed == in.Completed
	m.inputs = in
	if same {
		return
	}
	m.started = true

	m.cancelPendingLocked()

	switch {
	case !in.Visible:
		// Not rendered: nothing animates, and showing again starts from a
		// drawn curtain exactly like a fresh mount.
		m.transitionLocked(StateClosed)

	case in.Completed:
		m.transitionLocked(StateClosing)

	case in.SessionURL == "":
		m.transitionLocked(StateClosed)

	default:
		// Session URL just arrived (or changed): reveal after the open
		// delay, then finish after the travel time.
		m.transitionLocked(StateClosed)
		gen := m.gen
		m.pending = time.AfterFunc(m.cfg.OpenDelay, func() {
			m.fire(gen, StateOpening, m.cfg.TravelTime, StateOpen)
		})
	}
}

// fire runs a scheduled transition, then optionally schedules a follow-up.
// A zero followUp duration means there is no second stage.
func (m *Machine) fire(gen uint64, to State, followUp time.Duration, then State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return // stale: inputs changed after this was scheduled
	}
	m.transitionLocked(to)
	if followUp <= 0 {
		return
	}
	m.pending = time.AfterFunc(followUp, func() {
		m.fire(gen, then, 0, "")
	})
}

// cancelPendingLocked stops any scheduled transition and invalidates
// callbacks that may already be in flight.
func (m *Machine) cancelPendingLocked() {
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Machine) transitionLocked(to State) {
	if m.state == to {
		return
	}
	tr := Transition{From: m.state, To: to, At: time.Now()}
	m.state = to
	for ch := range m.subs {
		select {
		case ch <- tr:
		default: // slow subscriber: drop rather than stall a transition
		}
	}
}

// Subscribe returns a channel of state transitions and a cancel function.
// The channel is buffered; a subscriber that falls behind misses transitions
// rather than blocking the machine.
func (m *Machine) Subscribe() (<-chan Transition, func()) {
	ch := make(chan Transition, 8)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Stop invokes the configured OnStop callback. The machine itself does not
// change state; the host reacts by updating the inputs.
func (m *Machine) Stop() {
	m.mu.Lock()
	cb := m.cfg.OnStop
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Restart invokes the configured OnRestart callback.
func (m *Machine) Restart() {
	m.mu.Lock()
	cb := m.cfg.OnRestart
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Close tears the machine down: pending timers are cancelled so no stale
// transition can land afterwards, and subscriber channels are closed.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.cancelPendingLocked()
	for ch := range m.subs {
		delete(m.subs, ch)
		close(ch)
	}
}
