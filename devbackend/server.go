package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
	defaultIssuer     = "devbackend"
)

// Server is an in-memory stand-in for the admin API: auth/login, auth/refresh and
// auth/logout plus a protected "me" resource, mounted under /api/.
type Server struct {
	mux    *http.ServeMux
	routes []string
	users  *userRepo
	tokens *tokenIssuer
	log    zerolog.Logger

	refreshCalls atomic.Int64
	loginCalls   atomic.Int64
}

type Option func(*settings)

type settings struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	users      []*User
	log        zerolog.Logger
}

// WithSigningKey sets the HS256 key access tokens are signed with
func WithSigningKey(key []byte) Option {
	return func(s *settings) { s.key = key }
}

func WithAccessTokenTTL(d time.Duration) Option {
	return func(s *settings) { s.accessTTL = d }
}

func WithRefreshTokenTTL(d time.Duration) Option {
	return func(s *settings) { s.refreshTTL = d }
}

// WithClock replaces time.Now, for tests that move time past token expiry
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithUser(u *User) Option {
	return func(s *settings) { s.users = append(s.users, u) }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.log = logger }
}

func New(options ...Option) (*Server, error) {
	cfg := settings{
		issuer:     defaultIssuer,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
		log:        log.Logger,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if len(cfg.key) == 0 {
		return nil, errors.New("[devbackend New] signing key is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		users:  newUserRepo(),
		tokens: newTokenIssuer(cfg.key, cfg.issuer, cfg.accessTTL, cfg.refreshTTL, cfg.now),
		log:    cfg.log,
	}
	for _, u := range cfg.users {
		s.users.Upsert(u)
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	public := []func(http.HandlerFunc) http.HandlerFunc{s.RecoverMiddleware, s.LoggingMiddleware}
	protected := append(public, s.RequireAuth)

	s.RegisterRouteFunc("GET /api/health", ChainMiddleware(s.HealthHandler(), public...))
	s.RegisterRouteFunc("POST /api/"+authapi.PathLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("POST /api/"+authapi.PathRefresh, ChainMiddleware(s.RefreshHandler(), public...))
	s.RegisterRouteFunc("POST /api/"+authapi.PathLogout, ChainMiddleware(s.LogoutHandler(), protected...))
	s.RegisterRouteFunc("GET /api/me", ChainMiddleware(s.MeHandler(), protected...))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// RefreshCalls counts auth/refresh requests, accepted or not
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// LoginCalls counts auth/login requests, accepted or not
func (s *Server) LoginCalls() int64 { return s.loginCalls.Load() }

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authapi.MessageResponse{Message: "ok"})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.loginCalls.Add(1)

		var req authapi.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}

		user, ok := s.users.Get(strings.TrimSpace(req.Username))
		if !ok || !user.CheckPassword(req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid_grant", "invalid username or password")
			return
		}
		s.issue(w, user)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)

		var req authapi.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
			return
		}

		username, err := s.tokens.Consume(req.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_grant", err.Error())
			return
		}
		user, ok := s.users.Get(username)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_grant", "user no longer exists")
			return
		}
		s.issue(w, user)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "" {
			_, _ = s.tokens.Consume(req.RefreshToken)
		}
		if claims, ok := claimsFromContext(r.Context()); ok {
			s.tokens.RevokeAccess(claims)
		}
		writeJSON(w, http.StatusOK, authapi.MessageResponse{Message: "logged out"})
	}
}

type meResponse struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := claimsFromContext(r.Context())
		username, _ := claims.GetSubject()
		user, ok := s.users.Get(username)
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeJSON(w, http.StatusOK, meResponse{Username: user.Username, DisplayName: user.DisplayName})
	}
}

// issue answers with a new token pair. The display name is left to the access token's
// name claim.
func (s *Server) issue(w http.ResponseWriter, user *User) {
	access, exp, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create access token")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to create access token")
		return
	}
	refresh, err := s.tokens.CreateRefreshToken(user.Username)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create refresh token")
		writeError(w, http.StatusInternalServerError, "server_error", "failed to create refresh token")
		return
	}

	writeJSON(w, http.StatusOK, authapi.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Username:     user.Username,
		ExpiresAt:    utils.Ptr(exp),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, authapi.MessageResponse{Message: message, Error: code})
}

type contextKey string

const contextKeyClaims contextKey = "claims"

func claimsFromContext(ctx context.Context) (accessClaims, bool) {
	c, ok := ctx.Value(contextKeyClaims).(accessClaims)
	return c, ok
}
