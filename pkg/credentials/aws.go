package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here (enables testing).
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretProvider reads credentials from an AWS Secrets Manager secret.
//
// The secret string is a JSON object. It either holds credential keys
// directly, in which case every profile resolves to it, or maps profile
// names to objects of credential keys.
type AWSSecretProvider struct {
	secretID string
	client   SecretsManagerAPI
}

// NewAWSSecretProvider creates a provider for secretID (name or ARN), loading
// AWS configuration from the host environment. An empty region uses the
// configured default.
func NewAWSSecretProvider(ctx context.Context, secretID, region string) (*AWSSecretProvider, error) {
	if secretID == "" {
		return nil, fmt.Errorf("secret ID is required")
	}
	var optFns []func(*config.LoadOptions) error
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewAWSSecretProviderWithClient(secretsmanager.NewFromConfig(cfg), secretID), nil
}

// NewAWSSecretProviderWithClient creates a provider using an existing client.
func NewAWSSecretProviderWithClient(client SecretsManagerAPI, secretID string) *AWSSecretProvider {
	return &AWSSecretProvider{secretID: secretID, client: client}
}

// Name returns "aws-secrets-manager".
func (p *AWSSecretProvider) Name() string {
	return "aws-secrets-manager"
}

// GetCredentials fetches the secret and selects profile from it.
func (p *AWSSecretProvider) GetCredentials(ctx context.Context, profile string) (*Credentials, error) {
	profile = profileOrDefault(profile)

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		var rnf *smtypes.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return nil, notFound(p.Name(), profile, "Check the secret ID "+p.secretID+" and region.")
		}
		return nil, &CredentialError{Provider: p.Name(), Profile: profile, Err: fmt.Errorf("get secret value: %w", err)}
	}
	if out.SecretString == nil {
		return nil, &CredentialError{
			Provider: p.Name(),
			Profile:  profile,
			Err:      ErrInvalidValue,
			Detail:   "secret has no string value (binary secrets are not supported)",
		}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &raw); err != nil {
		return nil, &CredentialError{Provider: p.Name(), Profile: profile, Err: ErrInvalidValue, Detail: fmt.Sprintf("decoding JSON: %v", err)}
	}

	section, err := selectProfile(raw, profile)
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	values, err := stringValues(section)
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	creds, err := New(values)
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	return creds, nil
}

// selectProfile picks the object for profile out of a secret. A nested
// object named profile wins; otherwise a flat secret carrying a url or
// token is used as-is.
func selectProfile(raw map[string]any, profile string) (map[string]any, error) {
	if nested, ok := raw[profile].(map[string]any); ok {
		return nested, nil
	}
	_, hasURL := raw[KeyURL]
	_, hasToken := raw[KeyToken]
	if hasURL || hasToken {
		return raw, nil
	}
	return nil, &CredentialError{Err: ErrProfileNotFound}
}
