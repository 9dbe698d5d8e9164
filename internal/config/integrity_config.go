package config

// ExpectedCertSHA256 is baked in at build time:
//
//	go build -ldflags "-X github.com/jrsteele09/go-admin-client/internal/config.ExpectedCertSHA256=<hex>"
var ExpectedCertSHA256 string

type IntegrityConfig interface {
	GetExpectedCertSHA256() string
	GetSigningCertPath() string
}

type Integrity struct{}

var _ IntegrityConfig = Integrity{}

// GetExpectedCertSHA256 prefers the build-time value so the environment cannot override a release build
func (Integrity) GetExpectedCertSHA256() string {
	if ExpectedCertSHA256 != "" {
		return ExpectedCertSHA256
	}
	return GetEnv("EXPECTED_CERT_SHA256", "")
}

func (Integrity) GetSigningCertPath() string {
	return GetEnv("SIGNING_CERT_PATH", "./signing.pem")
}
