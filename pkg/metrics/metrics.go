// Package metrics exposes Prometheus counters/histograms for each pipeline stage.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	harvesterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_requests_total",
			Help: "Total number of upstream harvester API calls",
		},
		[]string{"operation", "result"},
	)

	harvesterRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvester_request_duration_seconds",
			Help:    "Duration of upstream harvester API calls",
			Buckets: []float64{0.05, 0.1, 0.3, 0.6, 1, 3, 6, 9, 20, 30},
		},
		[]string{"operation"},
	)

	materializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materializations_total",
			Help: "Total number of origin products materialized into canonical products",
		},
		[]string{"result"},
	)

	imagePipelineTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_pipeline_images_total",
			Help: "Total number of images processed by the image pipeline",
		},
		[]string{"stage", "result"},
	)

	imageQuotaHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_pipeline_quota_hits_total",
			Help: "Total number of 429/quota responses observed by the image pipeline",
		},
	)

	marketplaceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_calls_total",
			Help: "Total number of Rakuten marketplace API calls",
		},
		[]string{"endpoint", "status_code"},
	)

	marketplaceCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_call_duration_seconds",
			Help:    "Duration of Rakuten marketplace API calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 60},
		},
		[]string{"endpoint"},
	)

	registrationStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestrator_registration_status_total",
			Help: "Total number of registration outcomes by resulting rakuten_registration_status",
		},
		[]string{"status"},
	)

	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_db_connections_active",
			Help: "Number of active database connections held by the store",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_db_query_duration_seconds",
			Help:    "Duration of store database queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "table"},
	)

	translationCacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translator_cache_operations_total",
			Help: "Total number of translator cache operations",
		},
		[]string{"operation", "result"},
	)
)

// Collector provides methods to record pipeline metrics.
type Collector struct{}

func NewCollector() *Collector { return &Collector{} }

func (m *Collector) RecordHarvesterCall(operation, result string, duration time.Duration) {
	harvesterRequestsTotal.WithLabelValues(operation, result).Inc()
	harvesterRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Collector) RecordMaterialization(result string) {
	materializationsTotal.WithLabelValues(result).Inc()
}

func (m *Collector) RecordImageStage(stage, result string) {
	imagePipelineTotal.WithLabelValues(stage, result).Inc()
}

func (m *Collector) RecordImageQuotaHit() {
	imageQuotaHits.Inc()
}

func (m *Collector) RecordMarketplaceCall(endpoint, statusCode string, duration time.Duration) {
	marketplaceCallsTotal.WithLabelValues(endpoint, statusCode).Inc()
	marketplaceCallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Collector) RecordRegistrationStatus(status string) {
	registrationStatusTotal.WithLabelValues(status).Inc()
}

func (m *Collector) RecordDatabaseQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func (m *Collector) UpdateDatabaseConnections(count float64) {
	dbConnectionsActive.Set(count)
}

func (m *Collector) RecordCacheOperation(operation, result string) {
	translationCacheOperations.WithLabelValues(operation, result).Inc()
}

var global = NewCollector()

// Global returns the process-wide metrics collector.
func Global() *Collector { return global }
