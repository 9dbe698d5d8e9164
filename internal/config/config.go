package config

import "time"

type Config interface {
	EnvConfig
	NetworkConfig
	StorageConfig
	IntegrityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	IsRelease() bool
	GetLogLevel() string
}

type NetworkConfig interface {
	GetAPIBaseURL() string
	GetConnectTimeout() time.Duration
	GetReadTimeout() time.Duration
	GetWriteTimeout() time.Duration
	GetTokenIssuer() string
}

type StorageConfig interface {
	GetDataFolder() string
	GetStorageSecret() string
}

type mainConfig struct {
	EnvVars
	Network
	Storage
	Integrity
}

func New() Config {
	return mainConfig{}
}
