package integrity

import "strings"

// Verdict is the outcome of one run of the device checks
type Verdict struct {
	Rooted            bool
	Emulator          bool
	DebuggerAttached  bool
	SignatureTampered bool

	// Reasons are human readable, in check order
	Reasons []string
}

func (v Verdict) IsCompromised() bool {
	return v.Rooted || v.Emulator || v.DebuggerAttached || v.SignatureTampered
}

// Reason returns the comma-joined reasons
func (v Verdict) Reason() string {
	return strings.Join(v.Reasons, ", ")
}
