package config

import "os"

const (
	// EnvKey is the environment variable naming which config file to load.
	EnvKey = "APP_ENV"
	// DefaultEnv is used when EnvKey is unset, so a plain `go test`/local
	// run doesn't require any environment setup.
	DefaultEnv = "development"
)

// AppEnv returns the value of EnvKey, or DefaultEnv when it's unset.
func AppEnv() string {
	if env := os.Getenv(EnvKey); env != "" {
		return env
	}
	return DefaultEnv
}
