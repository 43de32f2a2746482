// Package metrics exposes pipeline outcomes for Prometheus scraping. All
// collectors live on a private registry. A nil *Collector records nothing.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raysh454/phishscan/internal/model"
)

const namespace = "phishscan"

type Collector struct {
	registry *prometheus.Registry

	analysesTotal   *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	stageErrors     *prometheus.CounterVec
	enrichmentTotal *prometheus.CounterVec
	faviconTotal    *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
}

// New registers every collector, plus the Go runtime and process
// collectors, on a fresh registry.
func New() (*Collector, error) {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses by terminal state",
		},
		[]string{"outcome"},
	)
	c.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected analyses by reason",
		},
		[]string{"reason"},
	)
	c.stageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Non-terminal stage errors",
		},
		[]string{"stage"},
	)
	c.enrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_total",
			Help:      "Enrichment results by provider and status",
		},
		[]string{"provider", "status"},
	)
	c.faviconTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favicon_lookups_total",
			Help:      "Favicon lookups by outcome",
		},
		[]string{"outcome"},
	)
	c.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	for _, col := range []prometheus.Collector{
		c.analysesTotal,
		c.rejectionsTotal,
		c.stageErrors,
		c.enrichmentTotal,
		c.faviconTotal,
		c.stageDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveStage records the time spent reaching stage and whether the stage
// recorded an error.
func (c *Collector) ObserveStage(stage model.State, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	if failed {
		c.stageErrors.WithLabelValues(string(stage)).Inc()
	}
}

// ObserveOutcome records a finished analysis. reason is only used for
// rejections.
func (c *Collector) ObserveOutcome(outcome model.State, reason string) {
	if c == nil {
		return
	}
	c.analysesTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == model.StateRejected {
		c.rejectionsTotal.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) ObserveEnrichment(results []model.EnrichmentResult) {
	if c == nil {
		return
	}
	for _, r := range results {
		c.enrichmentTotal.WithLabelValues(r.Provider, string(r.Status)).Inc()
	}
}

// ObserveFavicon records "found", "absent" or "error".
func (c *Collector) ObserveFavicon(outcome string) {
	if c == nil {
		return
	}
	c.faviconTotal.WithLabelValues(outcome).Inc()
}
