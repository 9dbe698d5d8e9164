package devbackend

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token revoked")
)

const refreshTokenLength = 32

// storedRefreshToken is a single-use refresh token
type storedRefreshToken struct {
	Token    string
	Username string
	Iat      time.Time
}

// tokenIssuer mints HS256 access tokens and single-use refresh tokens. A user holds at
// most one refresh token; issuing a new one invalidates the previous one.
type tokenIssuer struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu        sync.Mutex
	refresh   map[string]storedRefreshToken
	byUser    map[string]string
	revokedAT map[string]time.Time
}

func newTokenIssuer(key []byte, issuer string, accessTTL, refreshTTL time.Duration, now func() time.Time) *tokenIssuer {
	return &tokenIssuer{
		key:        key,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		refresh:    make(map[string]storedRefreshToken),
		byUser:     make(map[string]string),
		revokedAT:  make(map[string]time.Time),
	}
}

// CreateAccessToken signs an access token for u. The client reads preferred_username,
// name and exp from it.
func (t *tokenIssuer) CreateAccessToken(u *User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.accessTTL)
	claims := jwtlib.MapClaims{
		"iss":                t.issuer,
		"sub":                u.Username,
		"preferred_username": u.Username,
		"name":               u.DisplayName,
		"iat":                now.Unix(),
		"exp":                exp.Unix(),
		"jti":                uuid.NewString(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, time.Unix(exp.Unix(), 0).UTC(), nil
}

// CreateRefreshToken replaces any refresh token username already holds.
func (t *tokenIssuer) CreateRefreshToken(username string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byUser[username]; ok {
		delete(t.refresh, existing)
	}
	t.refresh[token] = storedRefreshToken{Token: token, Username: username, Iat: t.now()}
	t.byUser[username] = token
	return token, nil
}

// Consume validates and deletes a refresh token, returning its owner.
func (t *tokenIssuer) Consume(token string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stored, ok := t.refresh[token]
	if !ok {
		return "", ErrInvalidRefreshToken
	}
	delete(t.refresh, token)
	delete(t.byUser, stored.Username)

	if t.now().Sub(stored.Iat) > t.refreshTTL {
		return "", ErrInvalidRefreshToken
	}
	return stored.Username, nil
}

// Verify checks signature, issuer, expiry and revocation of an access token.
func (t *tokenIssuer) Verify(token string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) { return t.key, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(t.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}

	jti, _ := claims["jti"].(string)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, revoked := t.revokedAT[jti]; revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RevokeAccess blocks an access token until it would have expired anyway
func (t *tokenIssuer) RevokeAccess(claims jwtlib.MapClaims) {
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if jti == "" || err != nil || exp == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.revokedAT[jti] = exp.Time
	now := t.now()
	for id, until := range t.revokedAT {
		if now.After(until) {
			delete(t.revokedAT, id)
		}
	}
}
