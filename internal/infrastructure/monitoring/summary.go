package monitoring

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary is the JSON shape served by the summary endpoint: request totals
// plus the recent provisioning latency distribution.
type Summary struct {
	UptimeSeconds float64        `json:"uptime_seconds"`
	TotalRequests int64          `json:"total_requests"`
	TotalErrors   int64          `json:"total_errors"`
	AvgRequestMs  float64        `json:"avg_request_ms"`
	Provision     LatencySummary `json:"provision"`
}

// LatencySummary describes the provisioning latency distribution over the
// sliding sample window.
type LatencySummary struct {
	Count    int     `json:"count"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"stddev_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P90Ms    float64 `json:"p90_ms"`
	P99Ms    float64 `json:"p99_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Snapshot assembles the current summary. Quantiles are computed over a
// copy so recording never blocks on the math.
func (m *Metrics) Snapshot() Summary {
	m.mu.RLock()
	s := Summary{
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		TotalRequests: m.snapshot.TotalRequests,
		TotalErrors:   m.snapshot.TotalErrors,
	}
	if m.snapshot.TotalRequests > 0 {
		s.AvgRequestMs = m.snapshot.TotalDuration / float64(m.snapshot.TotalRequests) * 1000
	}
	samples := make([]float64, len(m.samples))
	copy(samples, m.samples)
	m.mu.RUnlock()

	s.Provision = summarize(samples)
	return s
}

// summarize reduces latency samples (seconds) to milliseconds statistics.
// Results are all zero when there are no samples; a single sample has no
// spread, so its deviation is reported as zero rather than NaN.
func summarize(samples []float64) LatencySummary {
	ls := LatencySummary{Count: len(samples)}
	if len(samples) == 0 {
		return ls
	}

	sort.Float64s(samples)

	ls.MeanMs = stat.Mean(samples, nil) * 1000
	if len(samples) > 1 {
		ls.StdDevMs = stat.StdDev(samples, nil) * 1000
	}
	ls.P50Ms = stat.Quantile(0.50, stat.Empirical, samples, nil) * 1000
	ls.P90Ms = stat.Quantile(0.90, stat.Empirical, samples, nil) * 1000
	ls.P99Ms = stat.Quantile(0.99, stat.Empirical, samples, nil) * 1000
	ls.MaxMs = samples[len(samples)-1] * 1000
	return ls
}
