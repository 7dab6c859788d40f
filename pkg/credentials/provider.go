package credentials

import (
	"context"
	"os"
)

// DefaultProfile is the profile used when the caller does not name one.
const DefaultProfile = "default"

// Provider resolves a profile name to credentials.
type Provider interface {
	// Name returns the provider identifier used in errors and logs.
	Name() string

	// GetCredentials returns the credentials stored under profile.
	// It fails with a *CredentialError wrapping ErrProfileNotFound when the
	// profile does not exist.
	GetCredentials(ctx context.Context, profile string) (*Credentials, error)
}

// Env reads process environment variables.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// EnvFunc adapts a lookup function to Env.
type EnvFunc func(key string) (string, bool)

// LookupEnv calls f(key).
func (f EnvFunc) LookupEnv(key string) (string, bool) {
	return f(key)
}

// MapEnv is an Env backed by a fixed map, for tests and embedding.
type MapEnv map[string]string

// LookupEnv returns the mapped value.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// OSEnv reads the real process environment.
var OSEnv Env = EnvFunc(os.LookupEnv)

func profileOrDefault(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
