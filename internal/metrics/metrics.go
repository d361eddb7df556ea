// Package metrics holds the Prometheus collectors of the catalog service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Recorder records service metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	searchDuration *prometheus.HistogramVec
	searches       *prometheus.CounterVec
	searchTotal    prometheus.Histogram
	imported       *prometheus.CounterVec
	facetListings  prometheus.Counter
}

// NewRecorder creates a recorder with Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "card_catalog",
			Name:      "search_duration_seconds",
			Help:      "Time spent serving search requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"outcome"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "card_catalog",
			Name:      "searches_total",
			Help:      "Search requests by outcome.",
		}, []string{"outcome"}),
		searchTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "card_catalog",
			Name:      "search_matches",
			Help:      "Number of cards matched by successful searches.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		}),
		imported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "card_catalog",
			Name:      "imported_cards_total",
			Help:      "Cards processed by imports, by result.",
		}, []string{"result"}),
		facetListings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "card_catalog",
			Name:      "facet_listings_total",
			Help:      "Facet and range listings served.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.searchDuration,
		r.searches,
		r.searchTotal,
		r.imported,
		r.facetListings,
	)
	return r
}

// ObserveSearch records one search.
func (r *Recorder) ObserveSearch(outcome string, took time.Duration, total int) {
	if r == nil {
		return
	}
	r.searchDuration.WithLabelValues(outcome).Observe(took.Seconds())
	r.searches.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		r.searchTotal.Observe(float64(total))
	}
}

// ObserveImport records the result of an import.
func (r *Recorder) ObserveImport(upserted, failed int) {
	if r == nil {
		return
	}
	r.imported.WithLabelValues("upserted").Add(float64(upserted))
	r.imported.WithLabelValues("failed").Add(float64(failed))
}

// ObserveFacetListing counts one facet or range listing.
func (r *Recorder) ObserveFacetListing() {
	if r == nil {
		return
	}
	r.facetListings.Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
