package config

import "time"

const defaultTimeout = 30 * time.Second

type Network struct{}

var _ NetworkConfig = Network{}

// GetAPIBaseURL returns the backend root that auth/login, auth/refresh and content paths are resolved against
func (Network) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8080/api/")
}

func (Network) GetConnectTimeout() time.Duration {
	return GetDuration("CONNECT_TIMEOUT", defaultTimeout)
}

func (Network) GetReadTimeout() time.Duration {
	return GetDuration("READ_TIMEOUT", defaultTimeout)
}

func (Network) GetWriteTimeout() time.Duration {
	return GetDuration("WRITE_TIMEOUT", defaultTimeout)
}

// GetTokenIssuer returns the OIDC issuer used to verify access token claims. Empty disables verification.
func (Network) GetTokenIssuer() string {
	return GetEnv("TOKEN_ISSUER", "")
}
