package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := metrics.New()

	r.ObserveRefresh(metrics.ResultSuccess, 20*time.Millisecond)
	r.ObserveRefresh(metrics.ResultFailure, 10*time.Millisecond)
	r.ObserveRefresh(metrics.ResultNoRefreshToken, 0)
	r.RefreshDeduplicated()
	r.RefreshDeduplicated()
	r.Blocked()
	r.Retried()

	require.Equal(t, 1.0, testutil.ToFloat64(r.Refreshes.WithLabelValues(metrics.ResultSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Refreshes.WithLabelValues(metrics.ResultFailure)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.Refreshes.WithLabelValues(metrics.ResultNoRefreshToken)))
	require.Equal(t, 2.0, testutil.ToFloat64(r.RefreshDeduped))
	require.Equal(t, 1.0, testutil.ToFloat64(r.GateBlocked))
	require.Equal(t, 1.0, testutil.ToFloat64(r.RequestRetries))

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	var histogramCount uint64
	for _, mf := range families {
		if mf.GetName() == "refresh_duration_seconds" {
			histogramCount = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	require.Equal(t, uint64(2), histogramCount)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder

	require.NotPanics(t, func() {
		r.ObserveRefresh(metrics.ResultSuccess, time.Second)
		r.RefreshDeduplicated()
		r.Blocked()
		r.Retried()
	})
	require.Nil(t, r.Registry())
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.New()
	r.Blocked()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "gate_blocked_total 1"))
}
