package credentials

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProfileNotFound is returned when a provider has no entry for the requested profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUnknownKey is returned when a credential source carries an unrecognized key.
	ErrUnknownKey = errors.New("unknown credential key")
	// ErrInvalidValue is returned when a credential value cannot be parsed.
	ErrInvalidValue = errors.New("invalid credential value")
	// ErrMissingURL is returned when resolved credentials have no url.
	ErrMissingURL = errors.New("no url specified")
	// ErrMissingToken is returned when resolved credentials have no token.
	ErrMissingToken = errors.New("no token specified")
)

// CredentialError describes a failure to resolve credentials from a provider.
type CredentialError struct {
	Provider string
	Profile  string
	Err      error
	Detail   string
	Hint     string
}

func (e *CredentialError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("credential error")
	}
	if e.Profile != "" {
		fmt.Fprintf(&b, " (profile %q)", e.Profile)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Hint != "" {
		b.WriteString("\n\n  ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// IsCredentialError reports whether err is or wraps a *CredentialError.
func IsCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// withContext fills in the provider and profile on a CredentialError produced
// below a provider, or wraps any other error in one.
func withContext(err error, provider, profile string) error {
	if err == nil {
		return nil
	}
	var ce *CredentialError
	if errors.As(err, &ce) {
		if ce.Provider == "" {
			ce.Provider = provider
		}
		if ce.Profile == "" {
			ce.Profile = profile
		}
		return ce
	}
	return &CredentialError{Provider: provider, Profile: profile, Err: err}
}

func notFound(provider, profile, hint string) error {
	return &CredentialError{
		Provider: provider,
		Profile:  profile,
		Err:      ErrProfileNotFound,
		Hint:     hint,
	}
}
