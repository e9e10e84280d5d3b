package session

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/provision"
)

// Record is one live session under management.
type Record struct {
	Session        *provision.Session
	InitialMessage string
	AddedAt        time.Time
}

// Manager tracks live sessions and broadcasts their lifecycle changes.
type Manager struct {
	sessions sync.Map
	hub      *Hub
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a session manager. A nil metrics disables gauges.
func NewManager(log *logging.Logger, metrics *monitoring.Metrics) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{
		hub:     NewHub(),
		log:     log.Component("session"),
		metrics: metrics,
	}
}

// Add places a provisioned session under management.
func (m *Manager) Add(sess *provision.Session, initialMessage string) *Record {
	rec := &Record{
		Session:        sess,
		InitialMessage: initialMessage,
		AddedAt:        time.Now(),
	}
	m.sessions.Store(sess.ID, rec)
	m.log.Info("session tracked",
		zap.String("session_id", sess.ID),
		zap.String("region", sess.Region.String()),
	)
	m.publish(EventCreated, sess.ID)
	m.syncGauge()
	return rec
}

// Get retrieves a managed session by id.
func (m *Manager) Get(id string) (*Record, bool) {
	val, ok := m.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Record), true
}

// Remove takes a session out of management. When two callers race on the
// same id, exactly one sees ok=true; the loser must not release the
// session a second time.
func (m *Manager) Remove(id string) (*Record, bool) {
	val, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	m.log.Info("session untracked", zap.String("session_id", id))
	m.publish(EventReleased, id)
	m.syncGauge()
	return val.(*Record), true
}

// List returns all managed sessions, oldest first.
func (m *Manager) List() []*Record {
	var records []*Record
	m.sessions.Range(func(_, value interface{}) bool {
		records = append(records, value.(*Record))
		return true
	})
	sort.Slice(records, func(i, j int) bool {
		if records[i].AddedAt.Equal(records[j].AddedAt) {
			return records[i].Session.ID < records[j].Session.ID
		}
		return records[i].AddedAt.Before(records[j].AddedAt)
	})
	return records
}

// Len reports how many sessions are under management.
func (m *Manager) Len() int {
	n := 0
	m.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Subscribe registers a lifecycle event listener.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	return m.hub.Subscribe()
}

// DrainAll removes every session and hands each record to release.
// Used during graceful shutdown to return live sessions to the provider.
func (m *Manager) DrainAll(release func(*Record)) {
	for _, rec := range m.List() {
		if removed, ok := m.Remove(rec.Session.ID); ok {
			release(removed)
		}
	}
}

// Close shuts the event hub down.
func (m *Manager) Close() {
	m.hub.Close()
}

func (m *Manager) publish(typ EventType, id string) {
	m.hub.Publish(Event{Type: typ, SessionID: id, At: time.Now()})
}

func (m *Manager) syncGauge() {
	if m.metrics != nil {
		m.metrics.SetSessionsActive(m.Len())
	}
}
