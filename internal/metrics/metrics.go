// Package metrics exposes Prometheus counters for the pipeline.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

const namespace = "hatchery"

// Metrics holds the pipeline collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	scrapped    prometheus.Counter
	transferred prometheus.Counter
	delivered   prometheus.Counter
}

// New registers every collector, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Pipeline operations committed, by operation.",
		}, []string{"operation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Pipeline operations rejected, by operation and error kind.",
		}, []string{"operation", "kind"}),
		scrapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eggs_scrapped_total",
			Help:      "Eggs removed from stock as broken.",
		}),
		transferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chicks_transferred_total",
			Help:      "Chicks moved out of the hatchery.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eggs_delivered_total",
			Help:      "Eggs delivered out of batches.",
		}),
	}
	m.registry.MustRegister(
		m.transitions, m.rejections, m.scrapped, m.transferred, m.delivered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe counts op as committed when err is nil, rejected otherwise.
func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.transitions.WithLabelValues(op).Inc()
		return
	}
	m.rejections.WithLabelValues(op, Kind(err)).Inc()
}

func (m *Metrics) Scrapped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.scrapped.Add(float64(n))
}

func (m *Metrics) Transferred(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transferred.Add(float64(n))
}

func (m *Metrics) Delivered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.delivered.Add(float64(n))
}

// Kind names the error taxonomy bucket of err.
func Kind(err error) string {
	switch {
	case errors.Is(err, models.ErrCapacityExhausted):
		return "capacity_exhausted"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrConfiguration):
		return "configuration"
	case errors.Is(err, models.ErrConsistency):
		return "consistency"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
