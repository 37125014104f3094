package metric_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/pkg/metric"
)

func scrape(t *testing.T, metrics metric.PrometheusMetrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusMetrics_ExposesRecordedValues(t *testing.T) {
	metrics := metric.NewPrometheusMetrics("state-aggregator", nil)

	metrics.WithLabel("topic", "a").Increment("msg_ack_failures_total")
	metrics.WithLabel("topic", "a").Count("msg_ack_failures_total", 2)
	metrics.With(metric.Labels{"variant": "key-value"}).Gauge("aggregate_state_size", 3)
	metrics.WithLabel("success", true).Duration("msg_handle_duration_seconds", 20*time.Millisecond)

	body := scrape(t, metrics)
	assert.Contains(t, body, `state_aggregator_msg_ack_failures_total{topic="a"} 3`)
	assert.Contains(t, body, `state_aggregator_aggregate_state_size{variant="key-value"} 3`)
	assert.Contains(t, body, `state_aggregator_msg_handle_duration_seconds_count{success="true"} 1`)
}

func TestPrometheusMetrics_ConflictingLabels_ReportsError(t *testing.T) {
	var reported []error
	metrics := metric.NewPrometheusMetrics("test", func(err error) {
		reported = append(reported, err)
	})

	metrics.WithLabel("topic", "a").Increment("events_total")
	metrics.WithLabel("code", "500").Increment("events_total")

	require.Len(t, reported, 1)
	assert.ErrorContains(t, reported[0], "events_total")
	assert.Contains(t, scrape(t, metrics), `test_events_total{topic="a"} 1`)
}
