package transport

import (
	"time"

	"github.com/jrsteele09/go-admin-client/claims"
	"github.com/jrsteele09/go-admin-client/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRefreshTimeout = 90 * time.Second

type options struct {
	log            zerolog.Logger
	metrics        *metrics.Recorder
	claims         claims.Extractor
	refreshTimeout time.Duration
}

// Option configures the round trippers in this package
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClaims sets the extractor used to fill identity fields a refresh response leaves out
func WithClaims(extractor claims.Extractor) Option {
	return func(o *options) {
		o.claims = extractor
	}
}

// WithRefreshTimeout bounds a backend refresh call. The caller's cancellation does not apply to it.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:            log.Logger,
		claims:         claims.Unverified{},
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
