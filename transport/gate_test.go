package transport_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/kv/kvfake"
	"github.com/jrsteele09/go-admin-client/metrics"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/jrsteele09/go-admin-client/transport"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestGate_CompromisedBlocksBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		store func(t *testing.T) *session.Store
	}{
		{name: "logged in", store: loggedIn},
		{name: "logged out", store: func(*testing.T) *session.Store { return session.NewStore(kvfake.NewStore()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			recorder := metrics.New()

			client, err := transport.NewHTTPClient(b.config(), rooted, tt.store(t), transport.WithMetrics(recorder))
			require.NoError(t, err)

			_, err = client.Post(b.url("items"), "application/json", strings.NewReader(`{}`))
			require.Error(t, err)

			var violation *apperrors.SecurityViolationError
			require.True(t, errors.As(err, &violation))
			require.Equal(t, "device is rooted, running on an emulator", violation.Reason())
			require.True(t, errors.Is(err, apperrors.ErrSecurityViolation))

			require.Equal(t, int32(0), b.itemHits.Load())
			require.Equal(t, int32(0), b.refreshes.Load())
			require.Equal(t, 1.0, testutil.ToFloat64(recorder.GateBlocked))
		})
	}
}

func TestGate_TrustedPassesThrough(t *testing.T) {
	var hit bool
	next := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hit = true
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody, Request: req}, nil
	})

	resp, err := transport.NewGate(next, trusted).RoundTrip(mustRequest(t, "http://backend/api/items"))
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func mustRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}
