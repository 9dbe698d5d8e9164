package devbackend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/account"
	"github.com/jrsteele09/go-admin-client/api"
	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/devbackend"
	"github.com/jrsteele09/go-admin-client/integrity"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/kv/kvfake"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/jrsteele09/go-admin-client/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type netConfig struct {
	baseURL string
}

func (c netConfig) GetAPIBaseURL() string            { return c.baseURL }
func (c netConfig) GetConnectTimeout() time.Duration { return 5 * time.Second }
func (c netConfig) GetReadTimeout() time.Duration    { return 5 * time.Second }
func (c netConfig) GetWriteTimeout() time.Duration   { return 5 * time.Second }
func (c netConfig) GetTokenIssuer() string           { return "" }

type verdictFunc func() integrity.Verdict

func (f verdictFunc) Check() integrity.Verdict { return f() }

// clock is advanced by tests to expire access tokens
type clock struct {
	offset atomic.Int64
}

func (c *clock) Now() time.Time { return time.Now().Add(time.Duration(c.offset.Load())) }

func (c *clock) Advance(d time.Duration) { c.offset.Add(int64(d)) }

type me struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type harness struct {
	backend  *devbackend.Server
	clock    *clock
	sessions *session.Store
	facade   *account.Facade
	api      *api.Client
	http     *http.Client
	baseURL  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	admin, err := devbackend.NewUser("admin", "Administrator", "pw")
	require.NoError(t, err)

	clk := &clock{}
	backend, err := devbackend.New(
		devbackend.WithSigningKey([]byte("dev-signing-key")),
		devbackend.WithAccessTokenTTL(time.Minute),
		devbackend.WithClock(clk.Now),
		devbackend.WithUser(admin),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := netConfig{baseURL: srv.URL + "/api/"}
	sessions := session.NewStore(kvfake.NewStore())
	trusted := verdictFunc(func() integrity.Verdict { return integrity.Verdict{} })

	httpClient, err := transport.NewHTTPClient(cfg, trusted, sessions)
	require.NoError(t, err)
	authClient, err := authapi.NewClient(cfg.GetAPIBaseURL(), httpClient)
	require.NoError(t, err)
	apiClient, err := api.NewClient(cfg.GetAPIBaseURL(), httpClient)
	require.NoError(t, err)

	facade := account.NewFacade(authClient, sessions)
	t.Cleanup(facade.Close)

	return &harness{
		backend:  backend,
		clock:    clk,
		sessions: sessions,
		facade:   facade,
		api:      apiClient,
		http:     httpClient,
		baseURL:  cfg.baseURL,
	}
}

func TestLoginFillsDisplayNameFromToken(t *testing.T) {
	h := newHarness(t)

	result := h.facade.Login(context.Background(), "admin", "pw")
	require.True(t, result.IsSuccess(), result.Message())

	sess := h.sessions.Read()
	require.Equal(t, "admin", sess.Username)
	require.Equal(t, "Administrator", sess.DisplayName)
	require.False(t, sess.ExpiresAt.IsZero())
	require.Equal(t, "Administrator", h.facade.DisplayName().Get())

	got := api.Get[me](context.Background(), h.api, "me")
	v, ok := got.Value()
	require.True(t, ok, got.Message())
	require.Equal(t, me{Username: "admin", DisplayName: "Administrator"}, v)
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.facade.Login(context.Background(), "admin", "pw").IsSuccess())
	first := h.sessions.Read()

	h.clock.Advance(2 * time.Minute)

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := api.Get[me](context.Background(), h.api, "me")
			assert.True(t, got.IsSuccess(), got.Message())
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), h.backend.RefreshCalls())
	second := h.sessions.Read()
	require.NotEqual(t, first.AccessToken, second.AccessToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// refresh tokens are single use
	_, err := authapiClient(t, h).Refresh(context.Background(), first.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRevokedRefreshTokenLogsOut(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.facade.Login(context.Background(), "admin", "pw").IsSuccess())
	stale := h.sessions.Read()

	// a second login elsewhere rotates the user's only refresh token
	_, err := authapiClient(t, h).Login(context.Background(), authapi.LoginRequest{Username: "admin", Password: "pw"})
	require.NoError(t, err)
	h.clock.Advance(2 * time.Minute)

	got := api.Get[me](context.Background(), h.api, "me")
	require.True(t, got.IsFailure())
	require.ErrorIs(t, got.Err(), apperrors.ErrSessionInvalid)
	require.False(t, h.facade.IsLoggedIn().Get())
	require.NotEmpty(t, stale.RefreshToken)
	require.Equal(t, int64(1), h.backend.RefreshCalls())
}

func TestLogoutRevokesTokens(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.facade.Login(context.Background(), "admin", "pw").IsSuccess())
	before := h.sessions.Read()

	require.NoError(t, h.facade.Logout(context.Background()))
	require.False(t, h.facade.IsLoggedIn().Get())

	_, err := authapiClient(t, h).Refresh(context.Background(), before.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	req, err := http.NewRequest(http.MethodGet, h.baseURL+"me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+before.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)

	result := h.facade.Login(context.Background(), "admin", "nope")
	require.True(t, result.IsFailure())
	require.Equal(t, http.StatusUnauthorized, result.Code())
	require.Equal(t, "invalid username or password", result.Message())
	require.Equal(t, int64(1), h.backend.LoginCalls())
}

func TestNew_RequiresSigningKey(t *testing.T) {
	_, err := devbackend.New()
	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	h := newHarness(t)
	require.Contains(t, h.backend.Routes(), "POST /api/auth/refresh")
	require.Contains(t, h.backend.Routes(), "GET /api/me")
}

// authapiClient talks to the backend directly, bypassing the session chain
func authapiClient(t *testing.T, h *harness) *authapi.Client {
	t.Helper()
	c, err := authapi.NewClient(h.baseURL, &http.Client{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}
