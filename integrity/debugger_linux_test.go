//go:build linux

package integrity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracerAttached(t *testing.T) {
	attached, err := tracerAttached([]byte("Name:\tadminctl\nTracerPid:\t0\n"))
	require.NoError(t, err)
	require.False(t, attached)

	attached, err = tracerAttached([]byte("Name:\tadminctl\nTracerPid:\t4242\n"))
	require.NoError(t, err)
	require.True(t, attached)

	_, err = tracerAttached([]byte("Name:\tadminctl\n"))
	require.Error(t, err)
}

func TestProcDebuggerProbeMissingStatus(t *testing.T) {
	_, err := ProcDebuggerProbe{StatusPath: filepath.Join(t.TempDir(), "status")}.IsDebuggerAttached()
	require.ErrorIs(t, err, os.ErrNotExist)
}
