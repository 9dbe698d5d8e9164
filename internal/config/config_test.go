package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CONNECT_TIMEOUT", "")

	c := config.New()
	require.Equal(t, "DEV", c.GetEnv())
	require.False(t, c.IsRelease())
	require.Equal(t, 30*time.Second, c.GetConnectTimeout())
}

func TestReleaseAndDurations(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("READ_TIMEOUT", "15s")
	t.Setenv("WRITE_TIMEOUT", "not-a-duration")

	c := config.New()
	require.True(t, c.IsRelease())
	require.Equal(t, 15*time.Second, c.GetReadTimeout())
	require.Equal(t, 30*time.Second, c.GetWriteTimeout())
}

func TestExpectedCertPrefersBuildValue(t *testing.T) {
	t.Setenv("EXPECTED_CERT_SHA256", "from-env")
	c := config.New()
	require.Equal(t, "from-env", c.GetExpectedCertSHA256())

	config.ExpectedCertSHA256 = "baked"
	t.Cleanup(func() { config.ExpectedCertSHA256 = "" })
	require.Equal(t, "baked", c.GetExpectedCertSHA256())
}

func TestDevBackendDefaults(t *testing.T) {
	t.Setenv("DEV_BACKEND_ADDR", "")
	t.Setenv("DEV_ACCESS_TOKEN_TTL", "5s")

	c := config.NewDevBackend()
	require.Equal(t, ":8080", c.GetDevBackendAddr())
	require.Equal(t, 5*time.Second, c.GetDevAccessTokenTTL())
	require.NotEmpty(t, c.GetDevSigningKey())
}
