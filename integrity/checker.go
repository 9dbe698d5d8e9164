package integrity

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ReasonRooted            = "device is rooted"
	ReasonEmulator          = "running on an emulator"
	ReasonDebugger          = "debugger attached"
	ReasonSignatureTampered = "app signature tampered"
)

// Policy selects which checks run. Debugger and signature checks only run in release builds.
type Policy struct {
	Release            bool
	ExpectedCertSHA256 string
}

// Checker runs the device checks once and memoizes the verdict for the process lifetime.
type Checker struct {
	policy   Policy
	root     RootProbe
	device   DeviceInfoSource
	debugger DebuggerProbe
	certs    CertificateSource
	log      zerolog.Logger

	mu      sync.Mutex
	verdict atomic.Pointer[Verdict]
}

type CheckerOption func(*Checker)

func WithRootProbe(p RootProbe) CheckerOption {
	return func(c *Checker) { c.root = p }
}

func WithDeviceInfo(s DeviceInfoSource) CheckerOption {
	return func(c *Checker) { c.device = s }
}

func WithDebuggerProbe(p DebuggerProbe) CheckerOption {
	return func(c *Checker) { c.debugger = p }
}

func WithCertificateSource(s CertificateSource) CheckerOption {
	return func(c *Checker) { c.certs = s }
}

func WithLogger(logger zerolog.Logger) CheckerOption {
	return func(c *Checker) { c.log = logger }
}

// NewChecker builds a Checker with the platform probes, overridable through options.
func NewChecker(policy Policy, options ...CheckerOption) *Checker {
	props := BuildPropSource{}
	c := &Checker{
		policy:   policy,
		root:     NewPathRootProbe(props.BuildTags()),
		device:   props,
		debugger: ProcDebuggerProbe{},
		certs:    FileCertificateSource{},
		log:      log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Check returns the memoized verdict, computing it on first use.
// Reads after the first computation take no lock.
func (c *Checker) Check() Verdict {
	if v := c.verdict.Load(); v != nil {
		return clone(*v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v := c.verdict.Load(); v != nil {
		return clone(*v)
	}

	v := c.evaluate()
	c.verdict.Store(&v)
	return clone(v)
}

// Invalidate drops the memoized verdict so the next Check re-runs every probe.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdict.Store(nil)
}

func (c *Checker) evaluate() Verdict {
	var v Verdict

	if c.rooted() {
		v.Rooted = true
		v.Reasons = append(v.Reasons, ReasonRooted)
	}

	if emulator, reason := c.emulator(); emulator {
		v.Emulator = true
		v.Reasons = append(v.Reasons, reason)
	}

	if c.policy.Release {
		if attached, reason := c.debuggerAttached(); attached {
			v.DebuggerAttached = true
			v.Reasons = append(v.Reasons, reason)
		}
		if tampered, reason := c.signatureTampered(); tampered {
			v.SignatureTampered = true
			v.Reasons = append(v.Reasons, reason)
		}
	}

	evt := c.log.Info()
	if v.IsCompromised() {
		evt = c.log.Warn()
	}
	evt.Bool("release", c.policy.Release).Strs("reasons", v.Reasons).Msg("device integrity evaluated")
	return v
}

// rooted fails open: a broken probe must not lock out a healthy device.
func (c *Checker) rooted() bool {
	rooted, err := guard(func() (bool, error) { return c.root.IsRooted() })
	if err != nil {
		c.log.Warn().Err(err).Msg("root probe failed, assuming not rooted")
		return false
	}
	return rooted
}

func (c *Checker) emulator() (bool, string) {
	info, err := guard(func() (DeviceInfo, error) { return c.device.DeviceInfo() })
	if err != nil {
		return true, fmt.Sprintf("emulator check failed: %v", err)
	}
	if looksLikeEmulator(info) {
		return true, ReasonEmulator
	}
	return false, ""
}

func (c *Checker) debuggerAttached() (bool, string) {
	attached, err := guard(func() (bool, error) { return c.debugger.IsDebuggerAttached() })
	if err != nil {
		return true, fmt.Sprintf("debugger check failed: %v", err)
	}
	if attached {
		return true, ReasonDebugger
	}
	return false, ""
}

func (c *Checker) signatureTampered() (bool, string) {
	certs, err := guard(func() ([][]byte, error) { return c.certs.SigningCertificates() })
	if err != nil {
		return true, fmt.Sprintf("%s: signing certificate unreadable: %v", ReasonSignatureTampered, err)
	}
	if !signatureMatches(certs, c.policy.ExpectedCertSHA256) {
		return true, ReasonSignatureTampered
	}
	return false, ""
}

// guard turns a probe panic into an error so each check can apply its own failure policy
func guard[T any](probe func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return probe()
}

func clone(v Verdict) Verdict {
	v.Reasons = slices.Clone(v.Reasons)
	return v
}
