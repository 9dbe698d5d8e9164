//go:build !linux

package integrity

import (
	"fmt"
	"runtime"
)

// ProcDebuggerProbe has no process introspection outside linux. It always returns an
// error, so release builds on other platforms fail closed on the debugger check.
type ProcDebuggerProbe struct {
	StatusPath string
}

func (p ProcDebuggerProbe) IsDebuggerAttached() (bool, error) {
	return false, fmt.Errorf("debugger detection is not supported on %s", runtime.GOOS)
}
