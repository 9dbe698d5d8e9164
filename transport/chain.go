package transport

import (
	"net"
	"net/http"
	"time"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/internal/config"
)

// NewRoundTripper builds the outbound chain: Gate, RequestID, Authenticator, Refresher, base.
func NewRoundTripper(base http.RoundTripper, verdicts VerdictSource, sessions SessionStore, tokens TokenRefresher, opts ...Option) http.RoundTripper {
	refresher := NewRefresher(base, sessions, tokens, opts...)
	return NewGate(NewRequestID(NewAuthenticator(refresher, sessions)), verdicts, opts...)
}

// NewBaseTransport applies the connect and read timeouts to a copy of the default transport.
func NewBaseTransport(cfg config.NetworkConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.GetConnectTimeout(),
		KeepAlive: 30 * time.Second,
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = dialer.DialContext
	t.TLSHandshakeTimeout = cfg.GetConnectTimeout()
	t.ResponseHeaderTimeout = cfg.GetReadTimeout()
	return t
}

// CallTimeout bounds one call end to end: connect, write the request, read the response.
func CallTimeout(cfg config.NetworkConfig) time.Duration {
	return cfg.GetConnectTimeout() + cfg.GetWriteTimeout() + cfg.GetReadTimeout()
}

// NewHTTPClient returns the client every backend call goes through. Refresh calls use
// a separate client over Gate and base only, so they are never decorated with a bearer
// or recovered recursively.
func NewHTTPClient(cfg config.NetworkConfig, verdicts VerdictSource, sessions SessionStore, opts ...Option) (*http.Client, error) {
	base := NewBaseTransport(cfg)
	timeout := CallTimeout(cfg)

	refreshHTTP := &http.Client{
		Transport: NewGate(NewRequestID(base), verdicts, opts...),
		Timeout:   timeout,
	}
	tokens, err := authapi.NewClient(cfg.GetAPIBaseURL(), refreshHTTP)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithRefreshTimeout(timeout)}, opts...)
	return &http.Client{
		Transport: NewRoundTripper(base, verdicts, sessions, tokens, opts...),
		Timeout:   timeout,
	}, nil
}
