package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Publish(Event{Type: EventCreated, SessionID: "sess_a", At: time.Now()})

	assert.Equal(t, "sess_a", waitEvent(t, a).SessionID)
	assert.Equal(t, "sess_a", waitEvent(t, b).SessionID)
}

func TestHubCancelDetaches(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	cancel()
	cancel() // idempotent

	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")

	// Publishing after cancel must not panic.
	h.Publish(Event{Type: EventReleased, SessionID: "sess_a"})
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			h.Publish(Event{Type: EventCreated, SessionID: "sess_flood"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.LessOrEqual(t, received, 8, "overflow must be dropped, not queued")
			assert.Greater(t, received, 0)
			return
		}
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Close()

	_, open := <-ch
	assert.False(t, open)

	// All post-close operations are inert.
	h.Publish(Event{Type: EventCreated, SessionID: "sess_a"})
	h.Close()

	late, lateCancel := h.Subscribe()
	defer lateCancel()
	_, open = <-late
	require.False(t, open, "subscribing to a closed hub yields a closed channel")
}
