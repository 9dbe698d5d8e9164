package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-admin-client/authapi"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/internal/logging"
	"github.com/jrsteele09/go-admin-client/metrics"
	"github.com/jrsteele09/go-admin-client/session"
)

// SessionStore is the part of session.Store the refresher reads and mutates.
// Replace must write only while the stored refresh token still equals expectedRefresh.
type SessionStore interface {
	TokenReader
	RefreshToken() string
	Replace(expectedRefresh string, g session.Grant) error
	Clear() error
}

var _ SessionStore = (*session.Store)(nil)

// TokenRefresher exchanges a refresh token for a new pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error)
}

var _ TokenRefresher = (*authapi.Client)(nil)

// State of the session as seen by the refresher
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "logged_out"
	}
}

// Refresher recovers a request the backend rejected with 401. Recovery runs under one
// process-wide lock, so at most one refresh call is ever in flight. A caller that
// waited on the lock while another caller refreshed retries with the new token and
// does not refresh again. Each request is retried at most once.
type Refresher struct {
	next     http.RoundTripper
	sessions SessionStore
	tokens   TokenRefresher
	opts     options

	mu         sync.Mutex
	refreshing atomic.Bool
}

var _ http.RoundTripper = (*Refresher)(nil)

func NewRefresher(next http.RoundTripper, sessions SessionStore, tokens TokenRefresher, opts ...Option) *Refresher {
	return &Refresher{
		next:     next,
		sessions: sessions,
		tokens:   tokens,
		opts:     newOptions(opts),
	}
}

// State reports Refreshing while a refresh call is in flight, otherwise Authenticated
// or LoggedOut depending on the stored access token.
func (r *Refresher) State() State {
	if r.refreshing.Load() {
		return StateRefreshing
	}
	if r.sessions.AccessToken() != "" {
		return StateAuthenticated
	}
	return StateLoggedOut
}

func (r *Refresher) RoundTrip(req *http.Request) (*http.Response, error) {
	used := bearerToken(req)
	if used == "" {
		return r.next.RoundTrip(req)
	}

	req, err := replayable(req)
	if err != nil {
		return nil, err
	}

	resp, err := r.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	discard(resp)

	logger := r.opts.log.With().Str("path", req.URL.Path).Logger()
	logger.Debug().Str("token", logging.TokenHint(used)).Msg("access token rejected")

	current, err := r.reauthenticate(req.Context(), used)
	if err != nil {
		return nil, err
	}

	retry, err := rewind(req, current)
	if err != nil {
		return nil, err
	}
	r.opts.metrics.Retried()
	return r.next.RoundTrip(retry)
}

// reauthenticate returns the access token to retry with, refreshing if no other caller
// already replaced the token that failed.
func (r *Refresher) reauthenticate(ctx context.Context, used string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.sessions.AccessToken()
	if current == "" {
		return "", fmt.Errorf("%w: session was cleared while waiting to refresh", apperrors.ErrSessionInvalid)
	}
	if current != used {
		r.opts.metrics.RefreshDeduplicated()
		r.opts.log.Debug().Msg("token already refreshed, retrying")
		return current, nil
	}

	refreshToken := r.sessions.RefreshToken()
	if strings.TrimSpace(refreshToken) == "" {
		r.opts.metrics.ObserveRefresh(metrics.ResultNoRefreshToken, 0)
		return "", r.terminate(fmt.Errorf("no refresh token stored"))
	}

	r.refreshing.Store(true)
	defer r.refreshing.Store(false)

	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.refreshTimeout)
	defer cancel()

	start := time.Now()
	resp, err := r.tokens.Refresh(refreshCtx, refreshToken)
	if err != nil {
		r.opts.metrics.ObserveRefresh(metrics.ResultFailure, time.Since(start))
		return "", r.terminate(err)
	}

	grant := resp.Grant(refreshCtx, r.opts.claims)
	if err := r.sessions.Replace(refreshToken, grant); err != nil {
		if apperrors.Is(err, apperrors.ErrSessionChanged) {
			r.opts.metrics.ObserveRefresh(metrics.ResultDiscarded, time.Since(start))
			return r.changedDuringRefresh()
		}
		r.opts.metrics.ObserveRefresh(metrics.ResultFailure, time.Since(start))
		return "", r.terminate(err)
	}

	r.opts.metrics.ObserveRefresh(metrics.ResultSuccess, time.Since(start))
	r.opts.log.Info().Str("username", grant.Username).Msg("session refreshed")
	return grant.AccessToken, nil
}

// changedDuringRefresh handles a logout or login that committed while the refresh
// call was in flight. The refreshed pair is dropped; a logout stays logged out.
func (r *Refresher) changedDuringRefresh() (string, error) {
	if current := r.sessions.AccessToken(); current != "" {
		r.opts.log.Info().Msg("session replaced during refresh, retrying with the stored token")
		return current, nil
	}
	r.opts.log.Info().Msg("session cleared during refresh, discarding refreshed tokens")
	return "", fmt.Errorf("%w: session was cleared during refresh", apperrors.ErrSessionInvalid)
}

// terminate clears the session after a failed recovery. The returned error wraps
// ErrSessionInvalid, ErrAuthenticationExpired and the cause.
func (r *Refresher) terminate(cause error) error {
	r.opts.log.Warn().Err(cause).Msg("refresh failed, clearing session")
	if err := r.sessions.Clear(); err != nil {
		r.opts.log.Error().Err(err).Msg("failed to clear session")
	}
	return apperrors.Join(apperrors.ErrSessionInvalid, apperrors.ErrAuthenticationExpired, cause)
}

// replayable makes sure the request body can be sent a second time
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, apperrors.Wrapf(err, "buffer request body")
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return out, nil
}

// rewind returns a fresh copy of req carrying token
func rewind(req *http.Request, token string) (*http.Request, error) {
	out := withBearer(req, token)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, apperrors.Wrapf(err, "replay request body")
		}
		out.Body = body
	}
	return out, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
