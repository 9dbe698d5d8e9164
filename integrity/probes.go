package integrity

// RootProbe reports whether the device is rooted or jailbroken
type RootProbe interface {
	IsRooted() (bool, error)
}

// DebuggerProbe reports whether a debugger is attached to this process
type DebuggerProbe interface {
	IsDebuggerAttached() (bool, error)
}

// CertificateSource returns the DER encoded certificates the running binary was signed with
type CertificateSource interface {
	SigningCertificates() ([][]byte, error)
}

// DeviceInfo holds the build identifiers the emulator heuristic matches against
type DeviceInfo struct {
	Fingerprint  string
	Model        string
	Manufacturer string
	Brand        string
	Device       string
	Product      string
	Hardware     string
	Board        string
}

// DeviceInfoSource supplies the current DeviceInfo
type DeviceInfoSource interface {
	DeviceInfo() (DeviceInfo, error)
}

// RootProbeFunc adapts a function to RootProbe
type RootProbeFunc func() (bool, error)

func (f RootProbeFunc) IsRooted() (bool, error) { return f() }

// DebuggerProbeFunc adapts a function to DebuggerProbe
type DebuggerProbeFunc func() (bool, error)

func (f DebuggerProbeFunc) IsDebuggerAttached() (bool, error) { return f() }

// CertificateSourceFunc adapts a function to CertificateSource
type CertificateSourceFunc func() ([][]byte, error)

func (f CertificateSourceFunc) SigningCertificates() ([][]byte, error) { return f() }

// DeviceInfoFunc adapts a function to DeviceInfoSource
type DeviceInfoFunc func() (DeviceInfo, error)

func (f DeviceInfoFunc) DeviceInfo() (DeviceInfo, error) { return f() }
