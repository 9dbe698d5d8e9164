//go:build linux

package integrity

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcDebuggerProbe reads TracerPid from /proc/self/status. Non-zero means a tracer is attached.
type ProcDebuggerProbe struct {
	StatusPath string
}

func (p ProcDebuggerProbe) IsDebuggerAttached() (bool, error) {
	path := p.StatusPath
	if path == "" {
		path = "/proc/self/status"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return tracerAttached(data)
}

func tracerAttached(status []byte) (bool, error) {
	scanner := bufio.NewScanner(bytes.NewReader(status))
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "TracerPid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false, fmt.Errorf("parse TracerPid: %w", err)
		}
		return pid != 0, nil
	}
	return false, fmt.Errorf("TracerPid not found")
}
