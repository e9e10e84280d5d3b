package provision

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/browserbase"
	"github.com/prosceniumhq/proscenium/internal/config"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/region"
)

// API is the slice of the provider client the provisioner needs.
type API interface {
	CreateSession(ctx context.Context, req browserbase.CreateSessionRequest) (*browserbase.Session, error)
	ReleaseSession(ctx context.Context, id string) error
	Debug(ctx context.Context, id string) (*browserbase.DebugLinks, error)
}

// Session is a fully provisioned remote browser session: created in the
// resolved region, parked on the landing page, live view link in hand.
type Session struct {
	ID         string          `json:"id"`
	Region     region.Region   `json:"region"`
	Strategy   region.Strategy `json:"-"`
	SessionURL string          `json:"session_url"`
	LandingURL string          `json:"landing_url"`
	CreatedAt  time.Time       `json:"created_at"`

	// ConnectURL is the CDP endpoint. Anyone holding it controls the
	// browser, so only the create response returns it to the owner;
	// list and get views never do.
	ConnectURL string `json:"-"`

	// Detach drops the CDP connection when the session ends.
	Detach func() `json:"-"`
}

// Provisioner runs the create, connect, navigate, debug pipeline against
// the provider and hands back sessions ready for viewing.
type Provisioner struct {
	api     API
	nav     Navigator
	profile Profile
	session config.SessionConfig
	landing string
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// New wires a provisioner. A nil metrics disables instrumentation.
func New(api API, nav Navigator, profile Profile, session config.SessionConfig, landingURL string, log *logging.Logger, metrics *monitoring.Metrics) *Provisioner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Provisioner{
		api:     api,
		nav:     nav,
		profile: profile,
		session: session,
		landing: landingURL,
		log:     log.Component("provision"),
		metrics: metrics,
	}
}

// LandingURL returns the page new sessions are parked on.
func (p *Provisioner) LandingURL() string {
	return p.landing
}

// CreateSession provisions a remote browser near the viewer's timezone.
// On any mid-pipeline failure the already-created remote session is
// released before the error is returned; a failed provision never leaks.
func (p *Provisioner) CreateSession(ctx context.Context, timezone string) (*Session, error) {
	start := time.Now()

	reg, strategy := region.ResolveWithStrategy(timezone)
	timer := p.provisionTimer(reg)
	log := p.log.With(
		zap.String("region", reg.String()),
		zap.String("strategy", strategy.String()),
	)
	log.Info("provisioning session", zap.String("timezone", timezone))
	if p.metrics != nil {
		p.metrics.RecordRegionResolution(reg.String(), strategy.String())
	}

	created, err := p.api.CreateSession(ctx, browserbase.CreateSessionRequest{
		Region:          reg.String(),
		KeepAlive:       p.session.KeepAlive,
		Timeout:         p.session.TimeoutSeconds,
		Proxies:         p.session.Proxies,
		BrowserSettings: p.profile.BrowserSettings(),
	})
	if err != nil {
		return nil, p.fail(log, timer, StageCreate, err)
	}
	log = log.WithSession(created.ID)

	page, err := p.nav.Connect(ctx, created.ConnectURL)
	if err != nil {
		p.releaseQuietly(created.ID)
		return nil, p.fail(log, timer, StageConnect, err)
	}

	if err := page.Navigate(ctx, p.landing); err != nil {
		page.Detach()
		p.releaseQuietly(created.ID)
		return nil, p.fail(log, timer, StageNavigate, err)
	}

	links, err := p.api.Debug(ctx, created.ID)
	if err != nil {
		page.Detach()
		p.releaseQuietly(created.ID)
		return nil, p.fail(log, timer, StageDebug, err)
	}

	timer.Stop("success")
	if p.metrics != nil {
		p.metrics.IncSessionsCreated()
	}
	log.Info("session provisioned",
		zap.Duration("took", time.Since(start)),
		zap.String("session_url", links.DebuggerFullscreenURL),
	)

	return &Session{
		ID:         created.ID,
		Region:     reg,
		Strategy:   strategy,
		SessionURL: links.DebuggerFullscreenURL,
		LandingURL: p.landing,
		CreatedAt:  time.Now(),
		ConnectURL: created.ConnectURL,
		Detach:     page.Detach,
	}, nil
}

// Debug fetches fresh live view links for a running session.
func (p *Provisioner) Debug(ctx context.Context, id string) (*browserbase.DebugLinks, error) {
	links, err := p.api.Debug(ctx, id)
	if err != nil {
		return nil, stageErr(StageDebug, err)
	}
	return links, nil
}

// EndSession detaches from the remote browser and asks the provider to
// release the session.
func (p *Provisioner) EndSession(ctx context.Context, sess *Session) error {
	if sess.Detach != nil {
		sess.Detach()
		sess.Detach = nil
	}

	if err := p.api.ReleaseSession(ctx, sess.ID); err != nil {
		p.log.Error("session release failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return stageErr(StageRelease, err)
	}

	if p.metrics != nil {
		p.metrics.IncSessionsReleased()
	}
	p.log.Info("session ended", zap.String("session_id", sess.ID))
	return nil
}

// provisionTimer starts a latency timer for one attempt, or nil when
// metrics are off.
func (p *Provisioner) provisionTimer(reg region.Region) *monitoring.Timer {
	if p.metrics == nil {
		return nil
	}
	return monitoring.NewProvisionTimer(p.metrics, reg.String())
}

// fail instruments and wraps one pipeline failure.
func (p *Provisioner) fail(log *logging.Logger, timer *monitoring.Timer, stage Stage, err error) error {
	timer.Stop("error")
	if p.metrics != nil {
		p.metrics.RecordProvisionStageError(string(stage))
	}
	log.Error("provisioning failed",
		zap.String("stage", string(stage)),
		zap.Error(err),
	)
	return stageErr(stage, err)
}

// releaseQuietly returns an orphaned remote session to the provider after a
// mid-pipeline failure. The request context may already be gone, so the
// release gets its own deadline.
func (p *Provisioner) releaseQuietly(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.api.ReleaseSession(ctx, id); err != nil {
		p.log.Warn("failed to release orphaned session",
			zap.String("session_id", id),
			zap.Error(err),
		)
	}
}
