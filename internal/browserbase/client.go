package browserbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prosceniumhq/proscenium/internal/config"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/resilience"
	"github.com/prosceniumhq/proscenium/internal/logging"
)

const (
	// defaultRPS bounds our own call rate against the provider API.
	defaultRPS   = 10
	defaultBurst = 20
)

// Client talks to the Browserbase REST API. All calls go through the
// breaker so a provider outage fails fast, and none of the lifecycle calls
// are retried: a duplicated create leaks a paid session.
type Client struct {
	http      *resty.Client
	breaker   *resilience.Breaker
	limiter   *rate.Limiter
	log       *logging.Logger
	projectID string
}

// NewClient builds a production-ready provider client. A nil metrics is
// allowed; breaker state changes are then only logged.
func NewClient(cfg config.BrowserbaseConfig, log *logging.Logger, metrics *monitoring.Metrics) *Client {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Component("browserbase")

	// Transport from retryablehttp for its pooling and dial tuning; the
	// retry loop itself stays off (RetryMax 0).
	transportClient := retryablehttp.NewClient()
	transportClient.RetryMax = 0
	transportClient.Logger = nil

	httpClient := resty.New().
		SetBaseURL(cfg.APIURL).
		SetHeader("X-BB-API-Key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "proscenium/1.0").
		SetRetryCount(0)
	httpClient.SetTransport(transportClient.HTTPClient.Transport)
	httpClient.JSONMarshal = sonic.Marshal
	httpClient.JSONUnmarshal = sonic.Unmarshal

	breaker := resilience.New("browserbase", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Lenient: the provider API hiccups under load. Trip on 10+
			// consecutive failures or >70% failure rate with 20+ requests.
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if metrics != nil {
				metrics.SetBreakerState(name, int(to))
			}
		},
	})

	return &Client{
		http:      httpClient,
		breaker:   breaker,
		limiter:   rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		log:       log,
		projectID: cfg.ProjectID,
	}
}

// ProjectID returns the configured provider project.
func (c *Client) ProjectID() string {
	return c.projectID
}

// BreakerState returns the current upstream breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// do runs one provider call through the rate limiter and breaker. Only
// transport errors, 5xx, and 429 count against the breaker; other 4xx mean
// the provider is healthy and we asked for something wrong.
func (c *Client) do(ctx context.Context, fn func(r *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var resp *resty.Response
	err := c.breaker.Do(func() error {
		var err error
		resp, err = fn(c.http.R().SetContext(ctx))
		if err != nil {
			return err
		}
		if resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests {
			return newAPIError(resp.StatusCode(), resp.Body())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}
	return resp, nil
}

// CreateSession provisions a new remote browser session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	if req.ProjectID == "" {
		req.ProjectID = c.projectID
	}

	var out Session
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/v1/sessions")
	})
	if err != nil {
		return nil, err
	}
	if out.ID == "" || out.ConnectURL == "" {
		return nil, fmt.Errorf("browserbase: create response missing id or connectUrl")
	}

	c.log.Info("session created",
		zap.String("session_id", out.ID),
		zap.String("region", out.Region),
	)
	return &out, nil
}

// GetSession fetches the current state of a session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/v1/sessions/" + url.PathEscape(id))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions fetches sessions, optionally filtered by status.
func (c *Client) ListSessions(ctx context.Context, status string) ([]Session, error) {
	var out []Session
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		if status != "" {
			r.SetQueryParam("status", status)
		}
		return r.SetResult(&out).Get("/v1/sessions")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReleaseSession asks the provider to end a session. The provider completes
// the release asynchronously; a success here means the request was accepted.
func (c *Client) ReleaseSession(ctx context.Context, id string) error {
	body := releaseRequest{ProjectID: c.projectID, Status: ReleaseStatus}
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/v1/sessions/" + url.PathEscape(id))
	})
	if err != nil {
		return err
	}

	c.log.Info("session release requested", zap.String("session_id", id))
	return nil
}

// Debug fetches the live view links for a running session.
func (c *Client) Debug(ctx context.Context, id string) (*DebugLinks, error) {
	var out DebugLinks
	_, err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Get("/v1/sessions/" + url.PathEscape(id) + "/debug")
	})
	if err != nil {
		return nil, err
	}
	if out.DebuggerFullscreenURL == "" {
		return nil, fmt.Errorf("browserbase: debug response missing debuggerFullscreenUrl")
	}
	return &out, nil
}
