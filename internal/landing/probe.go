// Package landing probes the page every new session is parked on.
package landing

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/prosceniumhq/proscenium/internal/config"
	"github.com/prosceniumhq/proscenium/internal/logging"
)

const (
	// probeMaxBytes bounds how much of the page is parsed; the head carries
	// everything the probe reads.
	probeMaxBytes = 2 << 20

	defaultProbeTimeout = 10 * time.Second

	// Some landing hosts serve bot-looking agents a challenge page, so the
	// probe presents itself the way the provisioned browsers do.
	probeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

// Info is what a probe learned about the landing page.
type Info struct {
	URL         string    `json:"url"`
	Reachable   bool      `json:"reachable"`
	StatusCode  int       `json:"status_code,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Charset     string    `json:"charset,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
	Error       string    `json:"error,omitempty"`
}

// Prober fetches the landing page and caches what it finds. A failed probe
// never blocks provisioning; an unreachable landing page surfaces later as
// navigate-stage errors on real sessions.
type Prober struct {
	cfg  config.LandingConfig
	http *resty.Client
	log  *logging.Logger

	mu   sync.RWMutex
	last *Info
}

// NewProber builds a prober for the configured landing page.
func NewProber(cfg config.LandingConfig, log *logging.Logger) *Prober {
	if log == nil {
		log = logging.NewNop()
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"User-Agent":      probeUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})

	return &Prober{
		cfg:  cfg,
		http: httpClient,
		log:  log.Component("landing"),
	}
}

// Probe fetches the landing page, refreshes the cached result, and returns
// it. Failures are recorded in the result rather than returned.
func (p *Prober) Probe(ctx context.Context) *Info {
	info := &Info{URL: p.cfg.URL, CheckedAt: time.Now()}

	resp, err := p.http.R().SetContext(ctx).Get(p.cfg.URL)
	if err != nil {
		info.Error = err.Error()
		p.store(info)
		p.log.Warn("landing probe failed",
			zap.String("url", p.cfg.URL),
			zap.Error(err),
		)
		return info
	}

	info.StatusCode = resp.StatusCode()
	if resp.IsError() {
		info.Error = fmt.Sprintf("status %d", resp.StatusCode())
		p.store(info)
		p.log.Warn("landing page returned error status",
			zap.String("url", p.cfg.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return info
	}

	info.Reachable = true

	body := resp.Body()
	if len(body) > probeMaxBytes {
		body = body[:probeMaxBytes]
	}
	info.Charset = detectCharset(body)

	doc, err := parseHTML(body, info.Charset)
	if err != nil {
		p.store(info)
		p.log.Warn("landing page parse failed",
			zap.String("url", p.cfg.URL),
			zap.Error(err),
		)
		return info
	}

	info.Title = strings.TrimSpace(doc.Find("title").First().Text())
	info.Description = metaDescription(doc)

	p.store(info)
	p.log.Info("landing page probed",
		zap.String("url", p.cfg.URL),
		zap.Int("status", info.StatusCode),
		zap.String("title", info.Title),
	)
	return info
}

// Last returns the most recent probe result, if any probe has run.
func (p *Prober) Last() (*Info, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil, false
	}
	return p.last, true
}

// URL returns the landing page location the prober checks.
func (p *Prober) URL() string {
	return p.cfg.URL
}

func (p *Prober) store(info *Info) {
	p.mu.Lock()
	p.last = info
	p.mu.Unlock()
}

// detectCharset names the page encoding, defaulting to utf-8 when detection
// is inconclusive.
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// parseHTML decodes the body through the detected charset before parsing,
// falling back to a direct parse when the charset has no decoder.
func parseHTML(data []byte, detectedCharset string) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+detectedCharset)
	if err != nil {
		return goquery.NewDocumentFromReader(bytes.NewReader(data))
	}
	return goquery.NewDocumentFromReader(reader)
}

// metaDescription prefers the standard description tag and falls back to
// the Open Graph one.
func metaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}
