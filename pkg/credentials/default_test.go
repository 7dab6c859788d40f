package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProvider_NoFileSelectsEnvironment(t *testing.T) {
	p := DefaultProvider(DefaultOptions{Profile: "anything", Env: MapEnv{}})
	assert.IsType(t, &EnvironProvider{}, p)
}

func TestDefaultProvider_FileWithProfile(t *testing.T) {
	path := writeCredentialFile(t, t.TempDir(), "credentials.cbc", sampleCredentialFile)

	p := DefaultProvider(DefaultOptions{CredentialFile: path, Profile: "prod", Env: MapEnv{}})
	require.IsType(t, &FileProvider{}, p)

	c, err := p.GetCredentials(context.Background(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "PRODTOKEN", c.Token)
}

func TestDefaultProvider_FileWithoutProfileSelectsEnvironment(t *testing.T) {
	path := writeCredentialFile(t, t.TempDir(), "credentials.cbc", sampleCredentialFile)
	env := MapEnv{"CBAPI_URL": "https://env.example.com", "CBAPI_TOKEN": "ENV"}

	p := DefaultProvider(DefaultOptions{CredentialFile: path, Profile: "notinfile", Env: env})
	require.IsType(t, &EnvironProvider{}, p)

	c, err := p.GetCredentials(context.Background(), "notinfile")
	require.NoError(t, err)
	assert.Equal(t, "ENV", c.Token)
}

func TestDefaultProvider_MalformedFileIsNotSkipped(t *testing.T) {
	path := writeCredentialFile(t, t.TempDir(), "credentials.cbc", "[prod\nurl=https://prod.example.com\ntoken=PROD\n")
	env := MapEnv{"CBAPI_URL": "https://other.example.com", "CBAPI_TOKEN": "OTHER"}

	p := DefaultProvider(DefaultOptions{CredentialFile: path, Profile: "prod", Env: env})
	require.IsType(t, &FileProvider{}, p)

	c, err := p.GetCredentials(context.Background(), "prod")
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.True(t, IsCredentialError(err))
}

func TestDefaultProvider_MissingFileSelectsEnvironment(t *testing.T) {
	p := DefaultProvider(DefaultOptions{CredentialFile: filepath.Join(t.TempDir(), "absent.cbc"), Env: MapEnv{}})
	assert.IsType(t, &EnvironProvider{}, p)
}
