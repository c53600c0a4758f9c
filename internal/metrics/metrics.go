// Package metrics exposes Prometheus instrumentation for decision networks.
//
// Each Collector owns its own registry so servers and tests never collide
// on the global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvandessel/neuropath/internal/network"
)

const namespace = "neuropath"

// Search outcomes used as the "outcome" label.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Collector records network activity.
type Collector struct {
	registry *prometheus.Registry

	pathSearches   *prometheus.CounterVec
	reinforcements prometheus.Counter
	decayRuns      prometheus.Counter
	neurons        prometheus.Gauge
	synapses       prometheus.Gauge
	pathLength     prometheus.Histogram
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		pathSearches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "path_searches_total",
				Help:      "Total number of decision path searches by outcome",
			},
			[]string{"outcome"}, // found, not_found, error
		),
		reinforcements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reinforcements_total",
			Help:      "Total number of synapse reinforcements",
		}),
		decayRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decay_runs_total",
			Help:      "Total number of global decay runs",
		}),
		neurons: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neurons",
			Help:      "Current number of neurons",
		}),
		synapses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "synapses",
			Help:      "Current number of synapses",
		}),
		pathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_length",
			Help:      "Number of neurons on found decision paths",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13, 21},
		}),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveSearch records a completed search and the reinforcements it made.
func (c *Collector) ObserveSearch(res network.SearchResult) {
	if !res.Found {
		c.pathSearches.WithLabelValues(OutcomeNotFound).Inc()
		return
	}
	c.pathSearches.WithLabelValues(OutcomeFound).Inc()
	c.pathLength.Observe(float64(len(res.Path)))
	c.reinforcements.Add(float64(len(res.Reinforced)))
}

// ObserveSearchError records a search that failed before completing.
func (c *Collector) ObserveSearchError() {
	c.pathSearches.WithLabelValues(OutcomeError).Inc()
}

// ObserveReinforcement records a direct strengthen call that changed a synapse.
func (c *Collector) ObserveReinforcement() {
	c.reinforcements.Inc()
}

// ObserveDecay records one global decay run.
func (c *Collector) ObserveDecay() {
	c.decayRuns.Inc()
}

// SetSize updates the neuron and synapse gauges.
func (c *Collector) SetSize(neurons, synapses int) {
	c.neurons.Set(float64(neurons))
	c.synapses.Set(float64(synapses))
}

// Handler returns an http.Handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
