//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	AggregationDurations *prometheus.HistogramVec
	DocumentsScanned     *prometheus.CounterVec
	ShardsAggregated     *prometheus.CounterVec
	SegmentRetries       *prometheus.CounterVec

	ShardsLoading prometheus.Gauge
	ShardsLoaded  prometheus.Gauge

	InflightRequests *prometheus.GaugeVec
	RequestDurations *prometheus.HistogramVec
	OpenConnections  prometheus.Gauge
}

// NewPrometheusMetrics registers every metric with reg. Use NoopRegisterer
// to get working metrics that are never exported.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		AggregationDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aggregation_durations_ms",
			Help:    "Duration of aggregation operations in ms",
			Buckets: prometheus.ExponentialBuckets(1, 2, 15),
		}, []string{"class_name", "operation"}),
		DocumentsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregation_documents_scanned",
			Help: "Number of matched documents fed through the collectors",
		}, []string{"class_name"}),
		ShardsAggregated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregation_shards_total",
			Help: "Number of shard scans by outcome",
		}, []string{"operation", "status"}),
		SegmentRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregation_segment_retries",
			Help: "Number of shard scans restarted because a segment was compacted",
		}, []string{"operation"}),
		ShardsLoading: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shards_loading",
			Help: "Number of shard snapshots being loaded",
		}),
		ShardsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shards_loaded",
			Help: "Number of shards available for aggregation",
		}),
		InflightRequests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "requests_inflight",
			Help: "Number of requests being served",
		}, []string{"method", "route"}),
		RequestDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of served requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		OpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "open_connections",
			Help: "Number of open client connections",
		}),
	}
}

func (pm *PrometheusMetrics) ObserveAggregation(className, operation string, took time.Duration) {
	if pm == nil {
		return
	}

	pm.AggregationDurations.WithLabelValues(className, operation).
		Observe(float64(took) / float64(time.Millisecond))
}

func (pm *PrometheusMetrics) AddDocumentsScanned(className string, count int) {
	if pm == nil {
		return
	}

	pm.DocumentsScanned.WithLabelValues(className).Add(float64(count))
}

func (pm *PrometheusMetrics) ShardAggregated(operation string, err error) {
	if pm == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	pm.ShardsAggregated.WithLabelValues(operation, status).Inc()
}

func (pm *PrometheusMetrics) SegmentRetry(operation string) {
	if pm == nil {
		return
	}

	pm.SegmentRetries.WithLabelValues(operation).Inc()
}
