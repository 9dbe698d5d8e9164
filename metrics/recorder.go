package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh results
const (
	ResultSuccess        = "success"
	ResultFailure        = "failure"
	ResultNoRefreshToken = "no_refresh_token"
	// ResultDiscarded: the refresh succeeded but the session was cleared or replaced meanwhile
	ResultDiscarded = "discarded"
)

// Recorder holds the client's session metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	RefreshDeduped  prometheus.Counter
	GateBlocked     prometheus.Counter
	RequestRetries  prometheus.Counter
}

// New creates a Recorder registered on its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refresh_total",
				Help: "Backend refresh calls and refresh short-circuits by result",
			},
			[]string{"result"},
		),
		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "refresh_duration_seconds",
				Help:    "Duration of backend refresh calls",
				Buckets: prometheus.DefBuckets,
			},
		),
		RefreshDeduped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "refresh_deduplicated_total",
				Help: "Authentication failures recovered with a token another caller already refreshed",
			},
		),
		GateBlocked: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gate_blocked_total",
				Help: "Outbound calls refused because the device verdict is compromised",
			},
		),
		RequestRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "request_retries_total",
				Help: "Requests retried after an authentication failure",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on, or nil for a nil Recorder
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveRefresh(result string, took time.Duration) {
	if r == nil {
		return
	}
	r.Refreshes.WithLabelValues(result).Inc()
	if result != ResultNoRefreshToken {
		r.RefreshDuration.Observe(took.Seconds())
	}
}

func (r *Recorder) RefreshDeduplicated() {
	if r == nil {
		return
	}
	r.RefreshDeduped.Inc()
}

func (r *Recorder) Blocked() {
	if r == nil {
		return
	}
	r.GateBlocked.Inc()
}

func (r *Recorder) Retried() {
	if r == nil {
		return
	}
	r.RequestRetries.Inc()
}
