package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/provision"
	"github.com/prosceniumhq/proscenium/internal/region"
)

func testSession(id string) *provision.Session {
	return &provision.Session{
		ID:         id,
		Region:     region.USWest2,
		SessionURL: "https://live.browserbase.test/devtools-fullscreen/" + id,
		CreatedAt:  time.Now(),
	}
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestAddGet(t *testing.T) {
	m := NewManager(nil, nil)

	rec := m.Add(testSession("sess_a"), "hello there")
	require.NotNil(t, rec)
	assert.Equal(t, "hello there", rec.InitialMessage)
	assert.WithinDuration(t, time.Now(), rec.AddedAt, time.Second)

	got, ok := m.Get("sess_a")
	require.True(t, ok)
	assert.Same(t, rec, got)

	_, ok = m.Get("sess_missing")
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	m := NewManager(nil, nil)
	m.Add(testSession("sess_a"), "")

	rec, ok := m.Remove("sess_a")
	require.True(t, ok)
	assert.Equal(t, "sess_a", rec.Session.ID)

	_, ok = m.Remove("sess_a")
	assert.False(t, ok, "second remove of the same id must lose")

	_, ok = m.Get("sess_a")
	assert.False(t, ok)
}

func TestRemoveConcurrent(t *testing.T) {
	m := NewManager(nil, nil)
	m.Add(testSession("sess_contested"), "")

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Remove("sess_contested"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one racer may win the removal")
}

func TestListOrdersOldestFirst(t *testing.T) {
	m := NewManager(nil, nil)
	m.Add(testSession("sess_a"), "")
	m.Add(testSession("sess_b"), "")
	m.Add(testSession("sess_c"), "")

	records := m.List()
	require.Len(t, records, 3)
	assert.Equal(t, "sess_a", records[0].Session.ID)
	assert.Equal(t, "sess_b", records[1].Session.ID)
	assert.Equal(t, "sess_c", records[2].Session.ID)
}

func TestLen(t *testing.T) {
	m := NewManager(nil, nil)
	assert.Equal(t, 0, m.Len())

	m.Add(testSession("sess_a"), "")
	m.Add(testSession("sess_b"), "")
	assert.Equal(t, 2, m.Len())

	m.Remove("sess_a")
	assert.Equal(t, 1, m.Len())
}

func TestLifecycleEvents(t *testing.T) {
	m := NewManager(nil, nil)
	events, cancel := m.Subscribe()
	defer cancel()

	m.Add(testSession("sess_a"), "")
	evt := waitEvent(t, events)
	assert.Equal(t, EventCreated, evt.Type)
	assert.Equal(t, "sess_a", evt.SessionID)
	assert.WithinDuration(t, time.Now(), evt.At, time.Second)

	m.Remove("sess_a")
	evt = waitEvent(t, events)
	assert.Equal(t, EventReleased, evt.Type)
	assert.Equal(t, "sess_a", evt.SessionID)
}

func TestDrainAll(t *testing.T) {
	m := NewManager(nil, nil)
	for i := 0; i < 3; i++ {
		m.Add(testSession(fmt.Sprintf("sess_%d", i)), "")
	}

	var drained []string
	m.DrainAll(func(rec *Record) {
		drained = append(drained, rec.Session.ID)
	})

	assert.ElementsMatch(t, []string{"sess_0", "sess_1", "sess_2"}, drained)
	assert.Equal(t, 0, m.Len())
}

func TestGaugeTracksActiveSessions(t *testing.T) {
	metrics := monitoring.NewMetricsWith(prometheus.NewRegistry())
	m := NewManager(nil, metrics)

	m.Add(testSession("sess_a"), "")
	m.Add(testSession("sess_b"), "")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SessionsActive))

	m.Remove("sess_a")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionsActive))
}
