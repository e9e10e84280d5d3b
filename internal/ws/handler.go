package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/config"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/provision"
	"github.com/prosceniumhq/proscenium/internal/session"
	"github.com/prosceniumhq/proscenium/internal/shared/id"
	"github.com/prosceniumhq/proscenium/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced on the REST surface; the stream
		// itself carries no credentials and only ever reports state for a
		// session id the caller already holds.
		return true
	},
}

// Terminator releases a live remote session when a viewer asks to stop.
type Terminator interface {
	EndSession(ctx context.Context, sess *provision.Session) error
}

// Handler upgrades viewer connections and hosts one curtain machine per
// connection.
type Handler struct {
	sessions   *session.Manager
	terminator Terminator
	curtain    config.CurtainConfig
	ping       time.Duration
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// NewHandler creates a websocket handler bound to the session registry.
func NewHandler(sessions *session.Manager, terminator Terminator, curtainCfg config.CurtainConfig, wsCfg config.WSConfig, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	ping := wsCfg.PingInterval
	if ping <= 0 {
		ping = defaultPingInterval
	}
	return &Handler{
		sessions:   sessions,
		terminator: terminator,
		curtain:    curtainCfg,
		ping:       ping,
		log:        log.Component("ws"),
		metrics:    metrics,
	}
}

// HandleConnection upgrades GET /ws/sessions/:id and streams curtain and
// lifecycle events for that session until the viewer disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := c.Param("id")
	if err := utils.ValidateSessionID(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := h.sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	viewerID := id.NewViewerID()
	log := h.log.WithSession(sessionID).With(zap.String("viewer_id", viewerID.String()))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	v := newViewer(h, conn, rec, log)
	log.Info("viewer connected")
	v.run()
	log.Info("viewer disconnected",
		zap.String("curtain_state", string(v.machine.State())),
	)
}

// stopSession is the OnStop hook: it removes the record and releases the
// remote session, exactly like a DELETE on the REST surface. The registry
// publishes the released event, which closes the curtain on every viewer of
// this session, including the one that asked.
func (h *Handler) stopSession(sessionID string) error {
	rec, ok := h.sessions.Remove(sessionID)
	if !ok {
		// Another caller already won the removal; nothing left to release.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if h.terminator == nil {
		return nil
	}
	return h.terminator.EndSession(ctx, rec.Session)
}
