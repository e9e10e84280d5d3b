package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/browserbase"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/resilience"
	"github.com/prosceniumhq/proscenium/internal/landing"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/provision"
	"github.com/prosceniumhq/proscenium/internal/session"
	"github.com/prosceniumhq/proscenium/internal/utils"
)

const serviceVersion = "1.0.0"

// Provisioner is the slice of the provisioning pipeline the handlers need.
type Provisioner interface {
	CreateSession(ctx context.Context, timezone string) (*provision.Session, error)
	EndSession(ctx context.Context, sess *provision.Session) error
	Debug(ctx context.Context, id string) (*browserbase.DebugLinks, error)
	LandingURL() string
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	provisioner Provisioner
	sessions    *session.Manager
	landing     *landing.Prober
	metrics     *monitoring.Metrics
	log         *logging.Logger
}

// NewHandlers creates a new handler set. The prober is optional; without it
// the health response simply omits landing page details.
func NewHandlers(provisioner Provisioner, sessions *session.Manager, prober *landing.Prober, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		provisioner: provisioner,
		sessions:    sessions,
		landing:     prober,
		metrics:     metrics,
		log:         log.Component("http"),
	}
}

// CreateSessionRequest is the body for POST /api/sessions.
type CreateSessionRequest struct {
	Timezone       string `json:"timezone"`
	InitialMessage string `json:"initial_message"`
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "proscenium",
		"version": serviceVersion,
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status": "healthy",
		"sessions": gin.H{
			"active": h.sessions.Len(),
		},
		"landing_url": h.provisioner.LandingURL(),
	}
	if h.landing != nil {
		if info, ok := h.landing.Last(); ok {
			resp["landing"] = info
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateSession provisions a new remote browser session near the caller.
func (h *Handlers) CreateSession(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxJSONSize)

	// The body and every field in it are optional; an empty POST means
	// "default region, no message".
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidateTimezone(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateInitialMessage(req.InitialMessage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.provisioner.CreateSession(c.Request.Context(), req.Timezone)
	if err != nil {
		h.provisionError(c, "failed to create session", err)
		return
	}

	h.sessions.Add(sess, utils.SanitizeMessage(req.InitialMessage))
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"sessionId":  sess.ID,
		"sessionUrl": sess.SessionURL,
		"connectUrl": sess.ConnectURL,
		"region":     sess.Region,
	})
}

// GetSession returns one managed session.
func (h *Handlers) GetSession(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateSessionID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.sessions.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, sessionView(rec))
}

// ListSessions returns all managed sessions, oldest first.
func (h *Handlers) ListSessions(c *gin.Context) {
	records := h.sessions.List()
	views := make([]gin.H, len(records))
	for i, rec := range records {
		views[i] = sessionView(rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": views,
		"count":    len(views),
	})
}

// TerminateSession releases a session back to the provider. Exactly one of
// two racing terminations wins; the loser sees 404.
func (h *Handlers) TerminateSession(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateSessionID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.sessions.Remove(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if err := h.provisioner.EndSession(c.Request.Context(), rec.Session); err != nil {
		// The record is already gone; the provider will time the session
		// out on its own. Report the failure without retrying.
		h.log.Error("session release failed",
			zap.String("session_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"success":    false,
			"error":      "session release failed",
			"session_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": id,
	})
}

// DebugSession fetches fresh live view links for a session.
func (h *Handlers) DebugSession(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateSessionID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.sessions.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	links, err := h.provisioner.Debug(c.Request.Context(), id)
	if err != nil {
		h.provisionError(c, "failed to fetch debug links", err)
		return
	}

	c.JSON(http.StatusOK, links)
}

// MetricsSummary returns aggregate request and provisioning statistics.
func (h *Handlers) MetricsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// provisionError maps a provisioning failure to a response. The caller gets
// a fixed message plus the pipeline stage; the cause is logged, never sent.
// An open breaker means the provider is struggling; everything else is a
// bad upstream call.
func (h *Handlers) provisionError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))

	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "session provisioning temporarily unavailable",
		})
		return
	}

	resp := gin.H{"success": false, "error": msg}
	if stage, ok := provision.StageOf(err); ok {
		resp["stage"] = string(stage)
	}
	c.JSON(http.StatusBadGateway, resp)
}
