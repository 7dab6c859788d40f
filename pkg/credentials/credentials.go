// Package credentials resolves the url, token and org key used to talk to the
// Carbon Black Cloud API.
//
// A Provider maps a profile name to a *Credentials value. The environment,
// INI credential files, the OS keychain and AWS Secrets Manager each have a
// Provider implementation; callers may supply their own.
package credentials

import (
	"fmt"
	"sort"
	"strings"
)

// Recognized credential keys. These are the INI keys of a credential file
// section and the JSON keys of keychain and Secrets Manager entries.
const (
	KeyURL               = "url"
	KeyToken             = "token"
	KeyOrgKey            = "org_key"
	KeySSLVerify         = "ssl_verify"
	KeySSLVerifyHostname = "ssl_verify_hostname"
	KeySSLCertFile       = "ssl_cert_file"
	KeySSLForceTLS12     = "ssl_force_tls_1_2"
	KeyProxy             = "proxy"
	KeyIgnoreSystemProxy = "ignore_system_proxy"
	KeyIntegration       = "integration"
)

// knownKeys lists every key New accepts.
var knownKeys = []string{
	KeyURL, KeyToken, KeyOrgKey, KeySSLVerify, KeySSLVerifyHostname,
	KeySSLCertFile, KeySSLForceTLS12, KeyProxy, KeyIgnoreSystemProxy, KeyIntegration,
}

// Credentials holds everything needed to open a session against the API.
// Values are treated as immutable once a provider returns them.
type Credentials struct {
	URL    string
	Token  string
	OrgKey string

	SSLVerify         bool
	SSLVerifyHostname bool
	SSLCertFile       string
	SSLForceTLS12     bool
	Proxy             string
	IgnoreSystemProxy bool
	Integration       string
}

// Default returns a Credentials value with connection options at their defaults
// and no url, token or org key.
func Default() *Credentials {
	return &Credentials{
		SSLVerify:         true,
		SSLVerifyHostname: true,
	}
}

// FromParams builds credentials from an explicit url, token and org key.
func FromParams(url, token, orgKey string) *Credentials {
	c := Default()
	c.URL = url
	c.Token = token
	c.OrgKey = orgKey
	return c
}

// New parses a map of credential keys into Credentials. Keys are matched
// case-insensitively. Unknown keys and malformed booleans are rejected.
func New(values map[string]string) (*Credentials, error) {
	c := Default()
	for rawKey, value := range values {
		key := strings.ToLower(strings.TrimSpace(rawKey))
		value = strings.TrimSpace(value)
		if err := c.set(key, value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Credentials) set(key, value string) error {
	var err error
	switch key {
	case KeyURL:
		c.URL = value
	case KeyToken:
		c.Token = value
	case KeyOrgKey:
		c.OrgKey = value
	case KeySSLCertFile:
		c.SSLCertFile = value
	case KeyProxy:
		c.Proxy = value
	case KeyIntegration:
		c.Integration = value
	case KeySSLVerify:
		c.SSLVerify, err = parseBoolKey(key, value)
	case KeySSLVerifyHostname:
		c.SSLVerifyHostname, err = parseBoolKey(key, value)
	case KeySSLForceTLS12:
		c.SSLForceTLS12, err = parseBoolKey(key, value)
	case KeyIgnoreSystemProxy:
		c.IgnoreSystemProxy, err = parseBoolKey(key, value)
	default:
		return &CredentialError{
			Err:    ErrUnknownKey,
			Detail: fmt.Sprintf("%q (known keys: %s)", key, strings.Join(knownKeys, ", ")),
		}
	}
	return err
}

func parseBoolKey(key, value string) (bool, error) {
	b, err := ParseBool(value)
	if err != nil {
		return false, &CredentialError{
			Err:    ErrInvalidValue,
			Detail: fmt.Sprintf("%s: %v", key, err),
		}
	}
	return b, nil
}

// ParseBool accepts the boolean spellings used in credential files:
// true/false, yes/no, on/off and 1/0, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// Validate reports whether the credentials carry the fields needed to connect.
// The org key is not required.
func (c *Credentials) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Values returns the credentials as a key map, the inverse of New.
// The token is included unredacted.
func (c *Credentials) Values() map[string]string {
	v := map[string]string{
		KeyURL:               c.URL,
		KeyToken:             c.Token,
		KeyOrgKey:            c.OrgKey,
		KeySSLVerify:         formatBool(c.SSLVerify),
		KeySSLVerifyHostname: formatBool(c.SSLVerifyHostname),
		KeySSLForceTLS12:     formatBool(c.SSLForceTLS12),
		KeyIgnoreSystemProxy: formatBool(c.IgnoreSystemProxy),
	}
	if c.SSLCertFile != "" {
		v[KeySSLCertFile] = c.SSLCertFile
	}
	if c.Proxy != "" {
		v[KeyProxy] = c.Proxy
	}
	if c.Integration != "" {
		v[KeyIntegration] = c.Integration
	}
	return v
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// String renders the credentials with the token redacted.
func (c *Credentials) String() string {
	vals := c.Values()
	vals[KeyToken] = Redact(c.Token)
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Credentials{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", k, vals[k])
	}
	b.WriteString("}")
	return b.String()
}

// Redact replaces a secret with a stable marker. Empty input stays empty.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}
