package landing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prosceniumhq/proscenium/internal/config"
)

func newTestProber(url string) *Prober {
	return NewProber(config.LandingConfig{
		URL:          url,
		ProbeEnabled: true,
		ProbeTimeout: 2 * time.Second,
	}, nil)
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbeExtractsMetadata(t *testing.T) {
	srv := serveHTML(t, `<!DOCTYPE html>
<html>
<head>
<title>Proscenium Welcome</title>
<meta name="description" content="Your table is waiting.">
</head>
<body><h1>Welcome</h1></body>
</html>`)

	p := newTestProber(srv.URL)
	info := p.Probe(context.Background())

	assert.True(t, info.Reachable)
	assert.Equal(t, http.StatusOK, info.StatusCode)
	assert.Equal(t, "Proscenium Welcome", info.Title)
	assert.Equal(t, "Your table is waiting.", info.Description)
	assert.NotEmpty(t, info.Charset)
	assert.Empty(t, info.Error)
	assert.False(t, info.CheckedAt.IsZero())
}

func TestProbeFallsBackToOpenGraphDescription(t *testing.T) {
	srv := serveHTML(t, `<html><head>
<title>Proscenium</title>
<meta property="og:description" content="Live sessions, no installs.">
</head></html>`)

	p := newTestProber(srv.URL)
	info := p.Probe(context.Background())

	assert.True(t, info.Reachable)
	assert.Equal(t, "Live sessions, no installs.", info.Description)
}

func TestProbeSendsBrowserHeaders(t *testing.T) {
	var gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html><head><title>ok</title></head></html>"))
	}))
	t.Cleanup(srv.Close)

	newTestProber(srv.URL).Probe(context.Background())

	assert.Contains(t, gotAgent, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
}

func TestProbeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	p := newTestProber(srv.URL)
	info := p.Probe(context.Background())

	assert.False(t, info.Reachable)
	assert.Equal(t, http.StatusServiceUnavailable, info.StatusCode)
	assert.Equal(t, "status 503", info.Error)
}

func TestProbeUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newTestProber(url)
	info := p.Probe(context.Background())

	assert.False(t, info.Reachable)
	assert.NotEmpty(t, info.Error)
}

func TestProbeTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timeout test in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)

	p := NewProber(config.LandingConfig{URL: srv.URL, ProbeTimeout: 50 * time.Millisecond}, nil)
	info := p.Probe(context.Background())

	assert.False(t, info.Reachable)
	assert.NotEmpty(t, info.Error)
}

func TestLastCachesMostRecentProbe(t *testing.T) {
	p := newTestProber("http://landing.invalid")

	_, ok := p.Last()
	assert.False(t, ok)

	srv := serveHTML(t, `<html><head><title>Cached</title></head></html>`)
	p = newTestProber(srv.URL)
	first := p.Probe(context.Background())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, first, last)
	assert.Equal(t, "Cached", last.Title)
}

func TestDetectCharsetDefaultsOnEmptyInput(t *testing.T) {
	assert.Equal(t, "utf-8", detectCharset(nil))
}
