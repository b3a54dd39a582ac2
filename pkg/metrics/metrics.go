package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the browser's Prometheus collectors.
type Metrics struct {
	// Network
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	ResponseSize  prometheus.Histogram

	// Pipeline
	PagesRendered  prometheus.Counter
	RenderDuration prometheus.Histogram
	ItemsEmitted   prometheus.Counter

	// Asynchronous loads
	ResourceLoads *prometheus.CounterVec

	Registry *prometheus.Registry
}

// New creates collectors registered on a fresh private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wren_fetches_total",
				Help: "Total number of fetches by scheme and outcome",
			},
			[]string{"scheme", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wren_fetch_duration_seconds",
				Help:    "Fetch duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		ResponseSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wren_response_size_bytes",
				Help:    "Response body size in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
		PagesRendered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wren_pages_rendered_total",
				Help: "Pages run through parse, resolve and layout",
			},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wren_render_duration_seconds",
				Help:    "Parse to layout duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ItemsEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wren_render_items_total",
				Help: "Render items produced by the resolver",
			},
		),
		ResourceLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wren_resource_loads_total",
				Help: "Asynchronous image and sub-frame loads by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Registry: reg,
	}
}

// Outcome labels.
const (
	OK    = "ok"
	Error = "error"
	Stale = "stale"
)
