package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carbonblack/cbc-sdk-go/internal/log"
	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/carbonblack/cbc-sdk-go/pkg/connection"
	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
)

// defaultIntegrationName is reported when neither the flags, the global
// config nor the credentials name an integration.
const defaultIntegrationName = "cbc-cli"

// newAWSSecretProvider is replaced in tests.
var newAWSSecretProvider = func(ctx context.Context, secretID, region string) (credentials.Provider, error) {
	return credentials.NewAWSSecretProvider(ctx, secretID, region)
}

// selectedProvider returns the provider chosen by flags, or nil when the
// default chain applies.
func selectedProvider(ctx context.Context) (credentials.Provider, error) {
	switch {
	case current.awsSecret != "":
		p, err := newAWSSecretProvider(ctx, current.awsSecret, current.awsRegion)
		if err != nil {
			return nil, fmt.Errorf("configuring AWS Secrets Manager: %w", err)
		}
		return p, nil
	case current.keychainService != "":
		return credentials.NewKeychainProvider(current.keychainService), nil
	}
	return nil, nil
}

// fileProvider returns a provider over the configured credential file, or
// the default locations when none is configured.
func fileProvider() *credentials.FileProvider {
	var paths []string
	if current.credentialFile != "" {
		paths = []string{current.credentialFile}
	}
	return credentials.NewFileProvider(paths, credentials.WithFileLogger(log.Logger()))
}

func connectOptions(provider credentials.Provider, profileName string) connection.Options {
	return connection.Options{
		IntegrationName:         current.integration,
		FallbackIntegrationName: defaultIntegrationName,
		CredentialFile:          current.credentialFile,
		Profile:                 profileName,
		CredentialProvider:      provider,
		Timeout:                 current.timeout,
		MaxRetries:              current.maxRetries,
		Logger:                  log.Logger(),
	}
}

// connect builds a BaseAPI for the active profile. Without a flag-selected
// provider or credential file, the default credential file locations are
// tried before the SDK's own default chain.
func connect(ctx context.Context) (*connection.BaseAPI, error) {
	provider, err := selectedProvider(ctx)
	if err != nil {
		return nil, err
	}
	if provider == nil && current.credentialFile == "" {
		if fp := fileProvider(); fp.HasProfile(profileName()) {
			log.Debug("using default credential file", "paths", fp.Paths(), "profile", profileName())
			provider = fp
		}
	}
	return connection.New(ctx, connectOptions(provider, current.profile))
}

func profileName() string {
	if current.profile != "" {
		return current.profile
	}
	return credentials.DefaultProfile
}

func keychainServiceOrDefault() string {
	if current.keychainService != "" {
		return current.keychainService
	}
	return credentials.DefaultKeychainService
}

func printJSON(v any) error {
	enc := json.NewEncoder(ui.Stdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
