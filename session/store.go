package session

import (
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/kv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	keyAccessToken  = "session.access_token"
	keyRefreshToken = "session.refresh_token"
	keyUsername     = "session.username"
	keyDisplayName  = "session.display_name"
	keyExpiresAt    = "session.expires_at"
)

var allKeys = []string{keyAccessToken, keyRefreshToken, keyUsername, keyDisplayName, keyExpiresAt}

// Store is the single source of truth for credentials. All five fields are
// written and read as one unit, so a reader never sees tokens from two different writes.
type Store struct {
	kv  kv.Store
	log zerolog.Logger

	// writeLock orders commits and their notifications
	writeLock sync.Mutex

	listenersLock sync.Mutex
	listeners     map[int]func(Session)
	nextListener  int
}

var _ oauth2.TokenSource = (*Store)(nil)

type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger
	}
}

func NewStore(namespace kv.Store, options ...StoreOption) *Store {
	s := &Store{
		kv:        namespace,
		log:       log.Logger,
		listeners: make(map[int]func(Session)),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Read returns the current session. It never fails; absent fields are empty.
func (s *Store) Read() Session {
	var sess Session
	s.kv.View(func(v kv.Values) {
		sess = decode(v)
	})

	if (sess.AccessToken == "") != (sess.RefreshToken == "") {
		s.log.Warn().Msg("stored session is partial, treating as logged out")
		return Session{}
	}
	return sess
}

// AccessToken returns the current access token or "".
func (s *Store) AccessToken() string {
	return s.Read().AccessToken
}

// RefreshToken returns the current refresh token or "".
func (s *Store) RefreshToken() string {
	return s.Read().RefreshToken
}

// Token implements oauth2.TokenSource over the stored session.
func (s *Store) Token() (*oauth2.Token, error) {
	sess := s.Read()
	if !sess.IsLoggedIn() {
		return nil, apperrors.ErrSessionInvalid
	}
	return &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       sess.ExpiresAt,
	}, nil
}

// Persist atomically replaces all five session fields.
func (s *Store) Persist(g Grant) error {
	return s.write(g, func(kv.Values) error { return nil })
}

// Replace persists g only while the stored refresh token is still expectedRefresh.
// If the session was cleared or replaced since, nothing is written and the error
// wraps ErrSessionChanged.
func (s *Store) Replace(expectedRefresh string, g Grant) error {
	return s.write(g, func(v kv.Values) error {
		if current, _ := v.String(keyRefreshToken); current != expectedRefresh {
			return apperrors.ErrSessionChanged
		}
		return nil
	})
}

// write commits g if precondition passes, all under writeLock
func (s *Store) write(g Grant, precondition func(kv.Values) error) error {
	if strings.TrimSpace(g.AccessToken) == "" || strings.TrimSpace(g.RefreshToken) == "" {
		return apperrors.ErrPartialSession
	}

	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	err := s.kv.Update(func(v kv.Values) error {
		if err := precondition(v); err != nil {
			return err
		}
		v.Delete(allKeys...)
		v.SetString(keyAccessToken, g.AccessToken)
		v.SetString(keyRefreshToken, g.RefreshToken)
		if g.Username != "" {
			v.SetString(keyUsername, g.Username)
		}
		if g.DisplayName != "" {
			v.SetString(keyDisplayName, g.DisplayName)
		}
		if !g.ExpiresAt.IsZero() {
			v.SetInt64(keyExpiresAt, g.ExpiresAt.UnixMilli())
		}
		return nil
	})
	if apperrors.Is(err, apperrors.ErrSessionChanged) {
		return err
	}
	if err != nil {
		return apperrors.Join(apperrors.ErrStorage, err)
	}

	s.log.Debug().Str("username", g.Username).Time("expiresAt", g.ExpiresAt).Msg("session stored")
	s.notify(s.Read())
	return nil
}

// Clear atomically erases the session.
func (s *Store) Clear() error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	err := s.kv.Update(func(v kv.Values) error {
		v.Delete(allKeys...)
		return nil
	})
	if err != nil {
		return apperrors.Join(apperrors.ErrStorage, err)
	}

	s.log.Debug().Msg("session cleared")
	s.notify(Session{})
	return nil
}

// OnChange registers fn to be called with the new session after every committed
// Persist or Clear, in commit order. fn must not write to the store.
func (s *Store) OnChange(fn func(Session)) (cancel func()) {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.listenersLock.Lock()
		defer s.listenersLock.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(sess Session) {
	s.listenersLock.Lock()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersLock.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

func decode(v kv.Values) Session {
	var sess Session
	sess.AccessToken, _ = v.String(keyAccessToken)
	sess.RefreshToken, _ = v.String(keyRefreshToken)
	sess.Username, _ = v.String(keyUsername)
	sess.DisplayName, _ = v.String(keyDisplayName)
	if ms, ok := v.Int64(keyExpiresAt); ok {
		sess.ExpiresAt = time.UnixMilli(ms).UTC()
	}
	return sess
}
