package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sampleWindow bounds the in-memory latency ring used for the JSON summary.
const sampleWindow = 1024

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Provisioning metrics
	ProvisionTotal       *prometheus.CounterVec
	ProvisionDuration    *prometheus.HistogramVec
	ProvisionStageErrors *prometheus.CounterVec

	// Region resolution metrics
	RegionResolutions *prometheus.CounterVec

	// Session metrics
	SessionsActive   prometheus.Gauge
	SessionsCreated  prometheus.Counter
	SessionsReleased prometheus.Counter

	// Curtain metrics
	CurtainTransitions *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Upstream breaker state (0=closed, 1=half-open, 2=open)
	BreakerState *prometheus.GaugeVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	mu       sync.RWMutex
	snapshot counters
	samples  []float64 // provisioning latency ring, seconds
	sampleAt int
}

// counters tracks running totals for the JSON summary endpoint.
type counters struct {
	TotalRequests int64
	TotalErrors   int64
	TotalDuration float64
}

// NewMetrics creates a metrics collector registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector on a specific registerer.
// Tests use this to avoid duplicate registration panics.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		samples:   make([]float64, 0, sampleWindow),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proscenium_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ProvisionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_provision_total",
				Help: "Total number of session provisioning attempts",
			},
			[]string{"region", "status"},
		),
		ProvisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "proscenium_provision_duration_seconds",
				Help:    "End-to-end session provisioning duration in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"region"},
		),
		ProvisionStageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_provision_stage_errors_total",
				Help: "Provisioning failures by pipeline stage",
			},
			[]string{"stage"},
		),

		RegionResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_region_resolutions_total",
				Help: "Region resolution outcomes by region and strategy",
			},
			[]string{"region", "strategy"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "proscenium_sessions_active",
				Help: "Number of live remote sessions",
			},
		),
		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proscenium_sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
		SessionsReleased: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "proscenium_sessions_released_total",
				Help: "Total number of sessions released",
			},
		),

		CurtainTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_curtain_transitions_total",
				Help: "Curtain state transitions",
			},
			[]string{"from", "to"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "proscenium_ws_connections",
				Help: "Number of active WebSocket viewers",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proscenium_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "proscenium_breaker_state",
				Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "proscenium_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordProvision records one provisioning attempt.
func (m *Metrics) RecordProvision(region, status string, duration time.Duration) {
	m.ProvisionTotal.WithLabelValues(region, status).Inc()
	m.ProvisionDuration.WithLabelValues(region).Observe(duration.Seconds())

	m.mu.Lock()
	if len(m.samples) < sampleWindow {
		m.samples = append(m.samples, duration.Seconds())
	} else {
		m.samples[m.sampleAt] = duration.Seconds()
	}
	m.sampleAt = (m.sampleAt + 1) % sampleWindow
	m.mu.Unlock()
}

// RecordProvisionStageError records which pipeline stage a provisioning
// attempt failed in.
func (m *Metrics) RecordProvisionStageError(stage string) {
	m.ProvisionStageErrors.WithLabelValues(stage).Inc()
}

// RecordRegionResolution records a region resolution outcome.
func (m *Metrics) RecordRegionResolution(region, strategy string) {
	m.RegionResolutions.WithLabelValues(region, strategy).Inc()
}

// RecordCurtainTransition records a curtain state change.
func (m *Metrics) RecordCurtainTransition(from, to string) {
	m.CurtainTransitions.WithLabelValues(from, to).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetSessionsActive sets the number of live sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
}

// IncSessionsCreated increments the created sessions counter
func (m *Metrics) IncSessionsCreated() {
	m.SessionsCreated.Inc()
}

// IncSessionsReleased increments the released sessions counter
func (m *Metrics) IncSessionsReleased() {
	m.SessionsReleased.Inc()
}

// SetBreakerState publishes a breaker state change.
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
