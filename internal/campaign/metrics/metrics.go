package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the campaign module.
type Metrics struct {
	// Harness verdicts by space and ledger status
	HarnessOutcome *prometheus.CounterVec

	// Candidates enumerated, by space
	Candidates *prometheus.CounterVec

	// Harnesses skipped on resume because the ledger already records success
	Skipped *prometheus.CounterVec

	// Per-harness run duration
	HarnessLatency *prometheus.HistogramVec

	// Campaigns currently executing
	ActiveCampaigns prometheus.Gauge
}

// New creates a Metrics instance with all campaign metrics registered.
func New() *Metrics {
	return &Metrics{
		HarnessOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriseq_campaign_harness_outcomes_total",
			Help: "Total harness verdicts by space and status",
		}, []string{"space", "status"}),

		Candidates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriseq_campaign_candidates_total",
			Help: "Total candidates enumerated by space",
		}, []string{"space"}),

		Skipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriseq_campaign_harnesses_skipped_total",
			Help: "Harnesses skipped on resume because they already succeeded",
		}, []string{"space"}),

		HarnessLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veriseq_campaign_harness_duration_seconds",
			Help:    "Duration of individual harness runs",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300},
		}, []string{"space"}),

		ActiveCampaigns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "veriseq_campaign_active",
			Help: "Campaigns currently executing",
		}),
	}
}

// ObserveHarness records one completed harness run.
func (m *Metrics) ObserveHarness(space, status string, candidates uint64, d time.Duration) {
	if m != nil {
		m.HarnessOutcome.WithLabelValues(space, status).Inc()
		m.Candidates.WithLabelValues(space).Add(float64(candidates))
		m.HarnessLatency.WithLabelValues(space).Observe(d.Seconds())
	}
}

// IncrementSkipped records a harness skipped on resume.
func (m *Metrics) IncrementSkipped(space string) {
	if m != nil {
		m.Skipped.WithLabelValues(space).Inc()
	}
}

// CampaignStarted marks a campaign as executing.
func (m *Metrics) CampaignStarted() {
	if m != nil {
		m.ActiveCampaigns.Inc()
	}
}

// CampaignFinished marks a campaign as done.
func (m *Metrics) CampaignFinished() {
	if m != nil {
		m.ActiveCampaigns.Dec()
	}
}
