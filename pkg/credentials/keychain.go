package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeychainService is the keychain service under which profiles are stored.
const DefaultKeychainService = "cbc-sdk"

// KeychainProvider reads credentials from the OS keychain. Each profile is
// an entry under the service whose secret is a JSON object of credential keys.
//
// Platform notes follow go-keyring: Keychain on macOS, Secret Service on
// Linux, Credential Manager on Windows.
type KeychainProvider struct {
	service string
}

// NewKeychainProvider creates a provider for service. An empty service uses
// DefaultKeychainService.
func NewKeychainProvider(service string) *KeychainProvider {
	if service == "" {
		service = DefaultKeychainService
	}
	return &KeychainProvider{service: service}
}

// Name returns "keychain".
func (p *KeychainProvider) Name() string {
	return "keychain"
}

// Service returns the keychain service name.
func (p *KeychainProvider) Service() string {
	return p.service
}

// GetCredentials loads the entry for profile.
func (p *KeychainProvider) GetCredentials(ctx context.Context, profile string) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile = profileOrDefault(profile)

	secret, err := keyring.Get(p.service, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, notFound(p.Name(), profile,
				fmt.Sprintf("Store it with: cbc keychain store %s --keychain-service %s", profile, p.service))
		}
		return nil, &CredentialError{Provider: p.Name(), Profile: profile, Err: fmt.Errorf("keychain get: %w", err)}
	}

	values, err := decodeValues([]byte(secret))
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	creds, err := New(values)
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	return creds, nil
}

// Store writes creds to the keychain under profile, replacing any existing entry.
func (p *KeychainProvider) Store(profile string, creds *Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(creds.Values())
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := keyring.Set(p.service, profileOrDefault(profile), string(data)); err != nil {
		return fmt.Errorf("keychain set: %w", err)
	}
	return nil
}

// Delete removes the entry for profile. Deleting a missing entry is not an error.
func (p *KeychainProvider) Delete(profile string) error {
	if err := keyring.Delete(p.service, profileOrDefault(profile)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// decodeValues parses a JSON object of credential keys. Non-string scalars
// (booleans written by hand, for example) are converted to their text form.
func decodeValues(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CredentialError{Err: ErrInvalidValue, Detail: fmt.Sprintf("decoding JSON: %v", err)}
	}
	return stringValues(raw)
}

func stringValues(raw map[string]any) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch tv := v.(type) {
		case string:
			values[k] = tv
		case bool:
			values[k] = formatBool(tv)
		case float64:
			values[k] = fmt.Sprintf("%v", tv)
		case nil:
			// skip nulls
		default:
			return nil, &CredentialError{Err: ErrInvalidValue, Detail: fmt.Sprintf("%s: unsupported JSON type %T", k, v)}
		}
	}
	return values, nil
}
