package authapi

import (
	"context"
	"time"

	"github.com/jrsteele09/go-admin-client/claims"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/rs/zerolog/log"
)

// Backend paths, relative to the API base URL
const (
	PathLogin   = "auth/login"
	PathRefresh = "auth/refresh"
	PathLogout  = "auth/logout"
)

// LoginRequest is the body of POST auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST auth/refresh and POST auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by auth/login and auth/refresh.
type TokenResponse struct {
	// AccessToken is attached as "Authorization: Bearer <accessToken>" on content calls.
	// Lifespan: short-lived
	AccessToken string `json:"accessToken"`

	// RefreshToken is exchanged at auth/refresh for a new pair.
	// Rotates on every refresh; the previous value must not be reused
	RefreshToken string `json:"refreshToken"`

	// Username of the authenticated operator
	Username string `json:"username,omitempty"`

	// DisplayName is optional; when absent it is read from the token's "name" claim if present
	DisplayName *string `json:"displayName,omitempty"`

	// ExpiresAt is the access token expiry, RFC 3339.
	// Example: "2025-01-01T00:00:00Z"
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// MessageResponse is returned by auth/logout and by most error responses
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Grant converts the response into a session write. Fields the backend left out are
// filled from the access token's claims when the extractor can read them.
func (r *TokenResponse) Grant(ctx context.Context, extractor claims.Extractor) session.Grant {
	g := session.Grant{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Username:     r.Username,
		DisplayName:  utils.Value(r.DisplayName),
		ExpiresAt:    utils.Value(r.ExpiresAt),
	}
	if extractor == nil || (g.Username != "" && g.DisplayName != "" && !g.ExpiresAt.IsZero()) {
		return g
	}

	id, err := extractor.Extract(ctx, r.AccessToken)
	if err != nil {
		log.Debug().Err(err).Msg("access token claims unavailable")
		return g
	}
	if g.Username == "" {
		g.Username = id.Username
	}
	if g.DisplayName == "" {
		g.DisplayName = id.DisplayName
	}
	if g.ExpiresAt.IsZero() {
		g.ExpiresAt = id.ExpiresAt
	}
	return g
}
