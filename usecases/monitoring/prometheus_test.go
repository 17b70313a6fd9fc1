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
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	t.Run("aggregation", func(t *testing.T) {
		m.ObserveAggregation("Order", "aggregate", 5*time.Millisecond)
		m.AddDocumentsScanned("Order", 25)
		m.AddDocumentsScanned("Order", 5)
		m.SegmentRetry("aggregate")
		m.ShardAggregated("aggregate", nil)
		m.ShardAggregated("aggregate", errors.New("boom"))

		assert.Equal(t, 1, testutil.CollectAndCount(m.AggregationDurations))
		assert.Equal(t, float64(30), testutil.ToFloat64(m.DocumentsScanned.WithLabelValues("Order")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.SegmentRetries.WithLabelValues("aggregate")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ShardsAggregated.WithLabelValues("aggregate", "error")))
	})

	t.Run("shard loading", func(t *testing.T) {
		m.StartLoadingShard()
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ShardsLoading))
		m.FinishLoadingShard(nil)
		m.StartLoadingShard()
		m.FinishLoadingShard(errors.New("corrupt"))

		assert.Equal(t, float64(0), testutil.ToFloat64(m.ShardsLoading))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.ShardsLoaded))
	})

	t.Run("nil metrics are no-ops", func(t *testing.T) {
		var nilMetrics *PrometheusMetrics
		nilMetrics.ObserveAggregation("Order", "aggregate", time.Second)
		nilMetrics.AddDocumentsScanned("Order", 1)
		nilMetrics.SegmentRetry("aggregate")
		nilMetrics.StartLoadingShard()
		nilMetrics.FinishLoadingShard(nil)

		h := http.NotFoundHandler()
		assert.NotNil(t, nilMetrics.InstrumentHandler(h))
	})

	t.Run("noop registerer", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NewPrometheusMetrics(NoopRegisterer)
			NewPrometheusMetrics(NoopRegisterer)
		})
	})
}

func TestInstrumentHandler(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(m.InstrumentHandler)
	router.HandleFunc("/v1/aggregate/{class}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, float64(1), testutil.ToFloat64(
			m.InflightRequests.WithLabelValues(http.MethodGet, "/v1/aggregate/{class}")))
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/aggregate/Order", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, float64(0), testutil.ToFloat64(
		m.InflightRequests.WithLabelValues(http.MethodGet, "/v1/aggregate/{class}")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDurations))
}

func TestCountingListener(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	counting := m.CountingListener(l)
	defer counting.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := counting.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	require.Nil(t, err)
	defer client.Close()

	conn := <-accepted
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpenConnections))
	require.Nil(t, conn.Close())
	conn.Close()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.OpenConnections))
}
