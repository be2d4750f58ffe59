package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics contains Prometheus metrics for note sync and season refresh.
type SyncMetrics struct {
	batchesTotal  *prometheus.CounterVec
	itemsTotal    *prometheus.CounterVec
	batchDuration prometheus.Histogram
	refreshTotal  *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewSyncMetrics creates and registers the sync metrics.
func NewSyncMetrics(registry *prometheus.Registry) (*SyncMetrics, error) {
	m := &SyncMetrics{
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_sync_batches_total",
				Help: "Note sync batches by result",
			},
			[]string{"result"},
		),
		itemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_sync_items_total",
				Help: "Note sync items by outcome",
			},
			[]string{"outcome"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mango_sync_duration_seconds",
				Help:    "Time spent reconciling one note sync batch",
				Buckets: prometheus.DefBuckets,
			},
		),
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mango_season_refresh_total",
				Help: "Farm season refreshes by whether the month changed",
			},
			[]string{"changed"},
		),
	}
	m.collectors = []prometheus.Collector{m.batchesTotal, m.itemsTotal, m.batchDuration, m.refreshTotal}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *SyncMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *SyncMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// ObserveBatch records one finished sync call. result is "ok" or "failed".
func (m *SyncMetrics) ObserveBatch(result string, created, updated, skipped, errored int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(result).Inc()
	m.itemsTotal.WithLabelValues("created").Add(float64(created))
	m.itemsTotal.WithLabelValues("updated").Add(float64(updated))
	m.itemsTotal.WithLabelValues("skipped").Add(float64(skipped))
	m.itemsTotal.WithLabelValues("error").Add(float64(errored))
	m.batchDuration.Observe(elapsed.Seconds())
}

// RecordSeasonRefresh counts a season refresh.
func (m *SyncMetrics) RecordSeasonRefresh(changed bool) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(strconv.FormatBool(changed)).Inc()
}
