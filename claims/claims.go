// Package claims reads identity hints (username, display name, expiry) out of
// JWT access tokens. The backend's JSON response stays authoritative; claims only
// fill fields it leaves out.
package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what an access token says about its holder
type Identity struct {
	Username    string
	DisplayName string
	ExpiresAt   time.Time
}

// Extractor reads an Identity from an access token
type Extractor interface {
	Extract(ctx context.Context, accessToken string) (Identity, error)
}

// Unverified decodes claims without checking the signature. The client is not the
// audience that enforces the token, it only needs hints for display and expiry.
type Unverified struct{}

var _ Extractor = Unverified{}

func (Unverified) Extract(_ context.Context, accessToken string) (Identity, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return Identity{}, fmt.Errorf("parse access token: %w", err)
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	return fromMap(mc), nil
}

func fromMap(mc jwt.MapClaims) Identity {
	var id Identity

	id.Username, _ = mc["preferred_username"].(string)
	if id.Username == "" {
		id.Username, _ = mc.GetSubject()
	}
	id.DisplayName, _ = mc["name"].(string)

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.UTC()
	}
	return id
}
