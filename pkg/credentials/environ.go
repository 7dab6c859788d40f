package credentials

import (
	"context"
)

// Environment variable prefixes. CBAPI_ is canonical; CBC_ is accepted as an alias.
const (
	EnvPrefix      = "CBAPI_"
	EnvAliasPrefix = "CBC_"
)

// envKeys maps credential keys to their environment variable suffix.
var envKeys = []struct {
	key    string
	suffix string
}{
	{KeyURL, "URL"},
	{KeyToken, "TOKEN"},
	{KeyOrgKey, "ORG_KEY"},
	{KeySSLVerify, "SSL_VERIFY"},
	{KeySSLVerifyHostname, "SSL_VERIFY_HOSTNAME"},
	{KeySSLCertFile, "SSL_CERT_FILE"},
	{KeySSLForceTLS12, "SSL_FORCE_TLS_1_2"},
	{KeyProxy, "PROXY"},
	{KeyIgnoreSystemProxy, "IGNORE_SYSTEM_PROXY"},
	{KeyIntegration, "INTEGRATION"},
}

// EnvironProvider reads credentials from CBAPI_* environment variables.
// The environment has no sections, so the profile name is ignored.
type EnvironProvider struct {
	env Env
}

// NewEnvironProvider creates a provider over env. A nil env reads the process environment.
func NewEnvironProvider(env Env) *EnvironProvider {
	if env == nil {
		env = OSEnv
	}
	return &EnvironProvider{env: env}
}

// Name returns "environment".
func (p *EnvironProvider) Name() string {
	return "environment"
}

// lookup returns the value of the canonical variable, then its alias.
func (p *EnvironProvider) lookup(suffix string) (string, bool) {
	if v, ok := p.env.LookupEnv(EnvPrefix + suffix); ok && v != "" {
		return v, true
	}
	if v, ok := p.env.LookupEnv(EnvAliasPrefix + suffix); ok && v != "" {
		return v, true
	}
	return "", false
}

// HasCredentials reports whether any of the url, token or org key variables is set.
func (p *EnvironProvider) HasCredentials() bool {
	for _, name := range []string{"URL", "TOKEN", "ORG_KEY"} {
		if _, ok := p.lookup(name); ok {
			return true
		}
	}
	return false
}

// GetCredentials builds credentials from the environment.
func (p *EnvironProvider) GetCredentials(ctx context.Context, profile string) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.HasCredentials() {
		return nil, notFound(p.Name(), profile,
			"Set "+EnvPrefix+"URL, "+EnvPrefix+"TOKEN and "+EnvPrefix+"ORG_KEY, or use a credential file.")
	}

	values := make(map[string]string)
	for _, k := range envKeys {
		if v, ok := p.lookup(k.suffix); ok {
			values[k.key] = v
		}
	}

	creds, err := New(values)
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	return creds, nil
}
