package browserbase

import "time"

// Session lifecycle states reported by the provider.
const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusError     = "ERROR"
	StatusTimedOut  = "TIMED_OUT"
)

// ReleaseStatus is the status value that asks the provider to end a session.
const ReleaseStatus = "REQUEST_RELEASE"

// Session is the provider's session resource.
type Session struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Status     string    `json:"status"`
	Region     string    `json:"region,omitempty"`
	ConnectURL string    `json:"connectUrl,omitempty"`
	KeepAlive  bool      `json:"keepAlive,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
	ProxyBytes int64     `json:"proxyBytes,omitempty"`
}

// Running reports whether the session is still live on the provider side.
func (s *Session) Running() bool {
	return s.Status == StatusRunning
}

// CreateSessionRequest is the body for session creation.
type CreateSessionRequest struct {
	ProjectID       string           `json:"projectId"`
	Region          string           `json:"region,omitempty"`
	KeepAlive       bool             `json:"keepAlive,omitempty"`
	Timeout         int              `json:"timeout,omitempty"`
	Proxies         bool             `json:"proxies,omitempty"`
	BrowserSettings *BrowserSettings `json:"browserSettings,omitempty"`
}

// BrowserSettings shapes the remote browser.
type BrowserSettings struct {
	Viewport      *Viewport    `json:"viewport,omitempty"`
	SolveCaptchas *bool        `json:"solveCaptchas,omitempty"`
	BlockAds      *bool        `json:"blockAds,omitempty"`
	Fingerprint   *Fingerprint `json:"fingerprint,omitempty"`
}

// Viewport is the remote browser window size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fingerprint constrains the synthetic browser identity.
type Fingerprint struct {
	Devices          []string `json:"devices,omitempty"`
	Locales          []string `json:"locales,omitempty"`
	OperatingSystems []string `json:"operatingSystems,omitempty"`
	Browsers         []string `json:"browsers,omitempty"`
}

// releaseRequest asks the provider to end a session.
type releaseRequest struct {
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
}

// DebugLinks carries the live view URLs for a running session.
type DebugLinks struct {
	DebuggerURL           string      `json:"debuggerUrl"`
	DebuggerFullscreenURL string      `json:"debuggerFullscreenUrl"`
	WSURL                 string      `json:"wsUrl,omitempty"`
	Pages                 []DebugPage `json:"pages,omitempty"`
}

// DebugPage is one open page in the remote browser.
type DebugPage struct {
	ID                    string `json:"id"`
	URL                   string `json:"url"`
	Title                 string `json:"title"`
	DebuggerURL           string `json:"debuggerUrl"`
	DebuggerFullscreenURL string `json:"debuggerFullscreenUrl"`
}
