package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chatty")

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	require.NotContains(t, buf.String(), `"debug"`)
	require.Contains(t, buf.String(), `"info"`)
}

func TestTokenHint(t *testing.T) {
	require.Equal(t, "absent", TokenHint(""))
	require.Equal(t, "****", TokenHint("abc"))
	require.Equal(t, "****6789", TokenHint("eyJ0123456789"))
}
