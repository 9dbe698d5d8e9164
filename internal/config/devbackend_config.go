package config

import "time"

// DevBackendConfig configures the local stand-in backend in cmd/devbackend
type DevBackendConfig interface {
	EnvConfig
	GetDevBackendAddr() string
	GetDevSigningKey() string
	GetDevAccessTokenTTL() time.Duration
	GetDevAdminPassword() string
}

type DevBackend struct {
	EnvVars
}

var _ DevBackendConfig = DevBackend{}

func NewDevBackend() DevBackendConfig {
	return DevBackend{}
}

func (DevBackend) GetDevBackendAddr() string {
	return GetEnv("DEV_BACKEND_ADDR", ":8080")
}

func (DevBackend) GetDevSigningKey() string {
	return GetEnv("DEV_SIGNING_KEY", "dev-only-signing-key")
}

// GetDevAccessTokenTTL is short by default so refreshes happen while trying the client out
func (DevBackend) GetDevAccessTokenTTL() time.Duration {
	return GetDuration("DEV_ACCESS_TOKEN_TTL", time.Minute)
}

func (DevBackend) GetDevAdminPassword() string {
	return GetEnv("DEV_ADMIN_PASSWORD", "admin")
}
