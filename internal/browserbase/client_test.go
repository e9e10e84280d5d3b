package browserbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosceniumhq/proscenium/internal/config"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/resilience"
	"github.com/prosceniumhq/proscenium/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.BrowserbaseConfig{
		APIURL:    srv.URL,
		APIKey:    "bb_test_key",
		ProjectID: "proj_test",
	}, logging.NewNop(), nil)
	return client, srv
}

func TestCreateSession(t *testing.T) {
	var gotReq CreateSessionRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/sessions", r.URL.Path)
		require.Equal(t, "bb_test_key", r.Header.Get("X-BB-API-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{
			ID:         "3fa85f64-5717-4562-b3fc-2c963f66afa6",
			ProjectID:  gotReq.ProjectID,
			Status:     StatusRunning,
			Region:     gotReq.Region,
			ConnectURL: "wss://connect.browserbase.com/session",
		})
	}))

	solve := true
	sess, err := client.CreateSession(context.Background(), CreateSessionRequest{
		Region:    "us-east-1",
		KeepAlive: true,
		Timeout:   600,
		Proxies:   true,
		BrowserSettings: &BrowserSettings{
			Viewport:      &Viewport{Width: 1920, Height: 1080},
			SolveCaptchas: &solve,
		},
	})
	require.NoError(t, err)

	// Project id comes from config when the request leaves it empty.
	assert.Equal(t, "proj_test", gotReq.ProjectID)
	assert.Equal(t, "us-east-1", gotReq.Region)
	assert.True(t, gotReq.KeepAlive)
	assert.Equal(t, 600, gotReq.Timeout)
	require.NotNil(t, gotReq.BrowserSettings)
	assert.Equal(t, 1920, gotReq.BrowserSettings.Viewport.Width)

	assert.Equal(t, "3fa85f64-5717-4562-b3fc-2c963f66afa6", sess.ID)
	assert.Equal(t, "wss://connect.browserbase.com/session", sess.ConnectURL)
	assert.True(t, sess.Running())
}

func TestCreateSessionMissingConnectURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "3fa85f64-5717-4562-b3fc-2c963f66afa6"})
	}))

	_, err := client.CreateSession(context.Background(), CreateSessionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connectUrl")
}

func TestCreateSessionProviderError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "no capacity"})
	}))

	_, err := client.CreateSession(context.Background(), CreateSessionRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "no capacity", apiErr.Message)
}

func TestGetSession(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions/abc-123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Session{ID: "abc-123", Status: StatusCompleted})
	}))

	sess, err := client.GetSession(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sess.Status)
	assert.False(t, sess.Running())
}

func TestListSessions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions", r.URL.Path)
		require.Equal(t, StatusRunning, r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Session{{ID: "a"}, {ID: "b"}})
	}))

	sessions, err := client.ListSessions(context.Background(), StatusRunning)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestReleaseSession(t *testing.T) {
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/sessions/abc-123", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Session{ID: "abc-123", Status: StatusCompleted})
	}))

	err := client.ReleaseSession(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, ReleaseStatus, gotBody["status"])
	assert.Equal(t, "proj_test", gotBody["projectId"])
}

func TestDebug(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions/abc-123/debug", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DebugLinks{
			DebuggerURL:           "https://debug.browserbase.com/d/abc-123",
			DebuggerFullscreenURL: "https://debug.browserbase.com/f/abc-123",
		})
	}))

	links, err := client.Debug(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "https://debug.browserbase.com/f/abc-123", links.DebuggerFullscreenURL)
}

func TestDebugMissingFullscreenURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := client.Debug(context.Background(), "abc-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debuggerFullscreenUrl")
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 15; i++ {
		_, err := client.GetSession(context.Background(), "missing")
		require.True(t, IsNotFound(err))
	}

	assert.Equal(t, resilience.StateClosed, client.BreakerState())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for i := 0; i < 10; i++ {
		_, err := client.GetSession(context.Background(), "abc")
		require.Error(t, err)
	}
	require.Equal(t, resilience.StateOpen, client.BreakerState())

	before := hits.Load()
	_, err := client.GetSession(context.Background(), "abc")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, hits.Load(), "open breaker must not hit the provider")
}
