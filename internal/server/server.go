package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/api/middleware"
	"github.com/prosceniumhq/proscenium/internal/browserbase"
	"github.com/prosceniumhq/proscenium/internal/config"
	httpapi "github.com/prosceniumhq/proscenium/internal/http"
	"github.com/prosceniumhq/proscenium/internal/infrastructure/monitoring"
	"github.com/prosceniumhq/proscenium/internal/landing"
	"github.com/prosceniumhq/proscenium/internal/logging"
	"github.com/prosceniumhq/proscenium/internal/provision"
	"github.com/prosceniumhq/proscenium/internal/session"
	"github.com/prosceniumhq/proscenium/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg         *config.Config
	log         *logging.Logger
	router      *gin.Engine
	httpServer  *http.Server
	sessions    *session.Manager
	provisioner *provision.Provisioner
	prober      *landing.Prober
	metrics     *monitoring.Metrics
}

// New builds a fully wired server from configuration. The provider
// credentials are checked here so a misconfigured deployment fails at
// boot instead of on the first session request.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	if err := cfg.Browserbase.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNop()
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsWith(registry)

	client := browserbase.NewClient(cfg.Browserbase, log, metrics)
	navigator := provision.NewCDPNavigator(log)
	provisioner := provision.New(client, navigator, provision.MustProfile(), cfg.Session, cfg.Landing.URL, log, metrics)
	sessions := session.NewManager(log, metrics)
	prober := landing.NewProber(cfg.Landing, log)

	handlers := httpapi.NewHandlers(provisioner, sessions, prober, metrics, log)
	stream := ws.NewHandler(sessions, provisioner, cfg.Curtain, cfg.WS, log, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.FromOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.POST("/api/sessions", handlers.CreateSession)
	router.GET("/api/sessions", handlers.ListSessions)
	router.GET("/api/sessions/:id", handlers.GetSession)
	router.DELETE("/api/sessions/:id", handlers.TerminateSession)
	router.GET("/api/sessions/:id/debug", handlers.DebugSession)

	router.GET("/ws/sessions/:id", stream.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/metrics/summary", handlers.MetricsSummary)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	return &Server{
		cfg:    cfg,
		log:    log.Component("server"),
		router: router,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		sessions:    sessions,
		provisioner: provisioner,
		prober:      prober,
		metrics:     metrics,
	}, nil
}

// Start probes the landing page, then serves until the listener fails or
// Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	if s.cfg.Landing.ProbeEnabled {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Landing.ProbeTimeout)
			defer cancel()
			s.prober.Probe(ctx)
		}()
	}

	s.log.Info("starting http server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("landing_url", s.cfg.Landing.URL),
	)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, then drains tracked sessions. Each
// drained session drops its CDP connection, and the remote browser is
// released too when SHUTDOWN_RELEASE is set. Draining publishes released
// events, so connected viewers see their completion card before the
// process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down", zap.Int("tracked_sessions", s.sessions.Len()))

	err := s.httpServer.Shutdown(ctx)

	s.sessions.DrainAll(func(rec *session.Record) {
		if s.cfg.Session.ReleaseOnShutdown {
			if endErr := s.provisioner.EndSession(ctx, rec.Session); endErr != nil {
				s.log.Warn("release on shutdown failed",
					zap.String("session_id", rec.Session.ID),
					zap.Error(endErr),
				)
			}
			return
		}
		if rec.Session.Detach != nil {
			rec.Session.Detach()
		}
	})
	s.sessions.Close()

	_ = s.log.Sync()
	return err
}
