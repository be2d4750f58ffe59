// Package metrics exposes the service's Prometheus collectors on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the service registers.
type Metrics struct {
	Registry *prometheus.Registry
	Sync     *SyncMetrics
	HTTP     *HTTPMetrics
}

// New creates a registry with runtime collectors plus the sync and HTTP metrics.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	syncMetrics, err := NewSyncMetrics(registry)
	if err != nil {
		return nil, err
	}
	httpMetrics, err := NewHTTPMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{Registry: registry, Sync: syncMetrics, HTTP: httpMetrics}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
