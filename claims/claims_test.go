package claims_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-admin-client/claims"
	"github.com/stretchr/testify/require"
)

const issuer = "https://cms.example.com"

func signHS256(t *testing.T, mc jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("1234"))
	require.NoError(t, err)
	return s
}

func TestUnverified(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signHS256(t, jwt.MapClaims{
		"sub":                "user-1",
		"preferred_username": "admin",
		"name":               "Admin User",
		"exp":                exp.Unix(),
	})

	id, err := claims.Unverified{}.Extract(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "admin", id.Username)
	require.Equal(t, "Admin User", id.DisplayName)
	require.True(t, exp.Equal(id.ExpiresAt))
}

func TestUnverifiedFallsBackToSubject(t *testing.T) {
	token := signHS256(t, jwt.MapClaims{"sub": "user-1"})

	id, err := claims.Unverified{}.Extract(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-1", id.Username)
	require.True(t, id.ExpiresAt.IsZero())
}

func TestUnverifiedRejectsOpaqueToken(t *testing.T) {
	_, err := claims.Unverified{}.Extract(context.Background(), "A1")
	require.Error(t, err)
}

func TestOIDC(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	extractor := claims.NewOIDCWithKeySet(issuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}})

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":  issuer,
		"sub":  "user-1",
		"name": "Admin User",
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	id, err := extractor.Extract(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", id.Username)
	require.Equal(t, "Admin User", id.DisplayName)
	require.True(t, exp.Equal(id.ExpiresAt))

	t.Run("wrong key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		forged, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss": issuer, "sub": "user-1", "exp": exp.Unix(),
		}).SignedString(other)
		require.NoError(t, err)

		_, err = extractor.Extract(context.Background(), forged)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"iss": "https://elsewhere.example.com", "sub": "user-1", "exp": exp.Unix(),
		}).SignedString(key)
		require.NoError(t, err)

		_, err = extractor.Extract(context.Background(), foreign)
		require.Error(t, err)
	})
}
