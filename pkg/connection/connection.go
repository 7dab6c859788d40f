// Package connection builds authenticated API clients from resolved credentials.
//
// New resolves credentials in a fixed order and binds a Session to them:
//
//  1. raw URL/Token/OrgKey options
//  2. an injected credentials.Provider, queried with the profile
//  3. the default provider chosen by credentials.DefaultProvider
//
// The first rule that applies wins, and a provider failure aborts construction.
package connection

import (
	"context"
	"log/slog"
	"time"

	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

// Options configures New.
type Options struct {
	// IntegrationName identifies the calling integration in the User-Agent.
	// When empty, the integration stored with the credentials is used; one
	// of the two is required.
	IntegrationName string
	// FallbackIntegrationName is used when neither IntegrationName nor the
	// credentials name an integration.
	FallbackIntegrationName string

	// URL, Token and OrgKey supply credentials directly. When URL or Token
	// is set no provider is consulted.
	URL    string
	Token  string
	OrgKey string

	// CredentialFile seeds the default provider. Empty means none.
	CredentialFile string
	// Profile is the profile looked up in the provider.
	Profile string
	// CredentialProvider overrides the default provider.
	CredentialProvider credentials.Provider
	// Environment is read by the default environment provider (nil reads os env).
	Environment credentials.Env

	// Timeout bounds each HTTP attempt (default 30s).
	Timeout time.Duration
	// MaxRetries bounds retries on 429/5xx (0 selects the default of 3, negative disables).
	MaxRetries int

	Logger *slog.Logger
}

// BaseAPI owns the credentials and session for one API client.
type BaseAPI struct {
	integrationName string
	credentials     *credentials.Credentials
	provider        credentials.Provider
	profile         string
	session         *Session
	logger          *slog.Logger
}

// New resolves credentials and constructs the session. It returns no client
// when resolution fails.
func New(ctx context.Context, opts Options) (*BaseAPI, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &BaseAPI{logger: logger}
	if err := api.resolve(ctx, opts); err != nil {
		return nil, err
	}
	if err := api.credentials.Validate(); err != nil {
		ce := &credentials.CredentialError{Profile: api.profile, Err: err}
		if api.provider != nil {
			ce.Provider = api.provider.Name()
		}
		return nil, ce
	}

	// The option wins over an integration name stored with the credentials.
	api.integrationName = opts.IntegrationName
	if api.integrationName == "" {
		api.integrationName = api.credentials.Integration
	}
	if api.integrationName == "" {
		api.integrationName = opts.FallbackIntegrationName
	}
	if api.integrationName == "" {
		return nil, ErrMissingIntegrationName
	}
	api.logger = logger.With("integration", api.integrationName)

	session, err := newSession(api.credentials, sessionConfig{
		integrationName: api.integrationName,
		timeout:         opts.Timeout,
		maxRetries:      opts.MaxRetries,
		logger:          api.logger,
	})
	if err != nil {
		return nil, err
	}
	api.session = session
	return api, nil
}

func (a *BaseAPI) resolve(ctx context.Context, opts Options) error {
	if opts.URL != "" || opts.Token != "" {
		if opts.CredentialProvider != nil || opts.CredentialFile != "" || opts.Profile != "" {
			a.logger.Debug("raw credentials supplied, ignoring provider options",
				"credential_file", opts.CredentialFile, "profile", opts.Profile)
		}
		a.credentials = credentials.FromParams(opts.URL, opts.Token, opts.OrgKey)
		return nil
	}

	provider := opts.CredentialProvider
	if provider == nil {
		provider = credentials.DefaultProvider(credentials.DefaultOptions{
			CredentialFile: opts.CredentialFile,
			Profile:        opts.Profile,
			Env:            opts.Environment,
			Logger:         a.logger,
		})
	}

	lookup := opts.Profile
	if lookup == "" {
		lookup = credentials.DefaultProfile
	}
	creds, err := provider.GetCredentials(ctx, lookup)
	if err != nil {
		return err
	}
	a.logger.Debug("resolved credentials", "provider", provider.Name(), "profile", lookup)

	a.credentials = creds
	a.provider = provider
	a.profile = lookup
	return nil
}

// IntegrationName returns the name embedded in the User-Agent.
func (a *BaseAPI) IntegrationName() string { return a.integrationName }

// Credentials returns the resolved credentials. When they came from a
// provider this is the pointer the provider returned.
func (a *BaseAPI) Credentials() *credentials.Credentials { return a.credentials }

// CredentialProvider returns the provider used, or nil for raw credentials.
func (a *BaseAPI) CredentialProvider() credentials.Provider { return a.provider }

// CredentialProfileName returns the profile looked up, or "" for raw credentials.
func (a *BaseAPI) CredentialProfileName() string { return a.profile }

// Session returns the authenticated session.
func (a *BaseAPI) Session() *Session { return a.session }

// OrgKey returns the org key of the resolved credentials.
func (a *BaseAPI) OrgKey() string { return a.credentials.OrgKey }
