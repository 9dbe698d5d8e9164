package account

import (
	"context"
	"strings"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/claims"
	"github.com/jrsteele09/go-admin-client/observable"
	"github.com/jrsteele09/go-admin-client/outcome"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the part of the backend the facade calls directly.
type AuthAPI interface {
	Login(ctx context.Context, req authapi.LoginRequest) (*authapi.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) (*authapi.MessageResponse, error)
}

var _ AuthAPI = (*authapi.Client)(nil)

// Facade is the session surface the UI layer talks to.
type Facade struct {
	api      AuthAPI
	sessions *session.Store
	claims   claims.Extractor
	log      zerolog.Logger

	isLoggedIn  *observable.Value[bool]
	displayName *observable.Value[string]
	unwatch     func()
}

type FacadeOption func(*Facade)

func WithLogger(logger zerolog.Logger) FacadeOption {
	return func(f *Facade) {
		f.log = logger
	}
}

// WithClaims sets the extractor used to fill identity fields the login response leaves out
func WithClaims(extractor claims.Extractor) FacadeOption {
	return func(f *Facade) {
		f.claims = extractor
	}
}

// NewFacade wires the observables to the store, so every committed change, including a
// clear after a failed refresh, is reflected in IsLoggedIn and DisplayName.
func NewFacade(api AuthAPI, sessions *session.Store, options ...FacadeOption) *Facade {
	f := &Facade{
		api:      api,
		sessions: sessions,
		claims:   claims.Unverified{},
		log:      log.Logger,
	}
	for _, opt := range options {
		opt(f)
	}

	current := sessions.Read()
	f.isLoggedIn = observable.New(current.IsLoggedIn())
	f.displayName = observable.New(current.DisplayName)
	f.unwatch = sessions.OnChange(f.publish)
	return f
}

// Login validates the credentials, calls the backend and persists the returned session.
func (f *Facade) Login(ctx context.Context, username, password string) outcome.Result[session.Session] {
	if err := ValidateCredentials(username, password); err != nil {
		return outcome.FromError[session.Session](err)
	}

	username = strings.TrimSpace(username)
	resp, err := f.api.Login(ctx, authapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		f.log.Warn().Err(err).Str("username", username).Msg("login failed")
		return outcome.FromError[session.Session](err)
	}

	grant := resp.Grant(ctx, f.claims)
	if grant.Username == "" {
		grant.Username = username
	}
	if err := f.sessions.Persist(grant); err != nil {
		f.log.Error().Err(err).Msg("failed to store session")
		return outcome.FromError[session.Session](err)
	}

	f.log.Info().Str("username", grant.Username).Msg("logged in")
	return outcome.Success(f.sessions.Read())
}

// LoginAsync emits Pending, then the result of Login. The channel is closed afterwards.
func (f *Facade) LoginAsync(ctx context.Context, username, password string) <-chan outcome.Result[session.Session] {
	ch := make(chan outcome.Result[session.Session], 2)
	ch <- outcome.Pending[session.Session]()

	go func() {
		defer close(ch)
		ch <- f.Login(ctx, username, password)
	}()
	return ch
}

// Logout asks the backend to invalidate the refresh token, then clears the local
// session whatever the backend said. Only a local storage failure is returned.
func (f *Facade) Logout(ctx context.Context) error {
	if refreshToken := f.sessions.RefreshToken(); refreshToken != "" {
		if _, err := f.api.Logout(ctx, refreshToken); err != nil {
			f.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}
	}
	return f.sessions.Clear()
}

// Session returns the stored session
func (f *Facade) Session() session.Session {
	return f.sessions.Read()
}

func (f *Facade) IsLoggedIn() *observable.Value[bool] {
	return f.isLoggedIn
}

func (f *Facade) DisplayName() *observable.Value[string] {
	return f.displayName
}

// Close detaches the observables from the store.
func (f *Facade) Close() {
	f.unwatch()
}

func (f *Facade) publish(s session.Session) {
	f.isLoggedIn.Set(s.IsLoggedIn())
	f.displayName.Set(s.DisplayName)
}
