package connection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
)

// mockCredentialProvider serves fixed credentials by section name.
type mockCredentialProvider struct {
	sections map[string]*credentials.Credentials
}

func (m *mockCredentialProvider) Name() string { return "mock" }

func (m *mockCredentialProvider) GetCredentials(_ context.Context, profile string) (*credentials.Credentials, error) {
	if c, ok := m.sections[profile]; ok {
		return c, nil
	}
	return nil, &credentials.CredentialError{Provider: m.Name(), Profile: profile, Err: credentials.ErrProfileNotFound}
}

func testCredentials(t *testing.T) *credentials.Credentials {
	t.Helper()
	c, err := credentials.New(map[string]string{
		"url":     "https://example.com",
		"token":   "ABCDEFGHIJKLM",
		"org_key": "A1B2C3D4",
	})
	require.NoError(t, err)
	return c
}

func TestNew_RawParams(t *testing.T) {
	api, err := New(context.Background(), Options{
		IntegrationName: "test1",
		URL:             "https://example.com",
		Token:           "ABCDEFGHIJKLM",
		OrgKey:          "A1B2C3D4",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", api.Credentials().URL)
	assert.Equal(t, "ABCDEFGHIJKLM", api.Credentials().Token)
	assert.Equal(t, "A1B2C3D4", api.Credentials().OrgKey)
	assert.Empty(t, api.CredentialProfileName())
	assert.Nil(t, api.CredentialProvider())
	assert.Equal(t, "https://example.com", api.Session().Server())
	assert.Equal(t, "ABCDEFGHIJKLM", api.Session().Token())
	assert.Contains(t, api.Session().TokenHeader()["User-Agent"], "test1")
}

func TestNew_DefaultProvider(t *testing.T) {
	t.Setenv("CBAPI_URL", "https://example.com")
	t.Setenv("CBAPI_TOKEN", "ABCDEFGHIJKLM")
	t.Setenv("CBAPI_ORG_KEY", "A1B2C3D4")

	api, err := New(context.Background(), Options{IntegrationName: "test2", CredentialFile: "", Profile: "anything"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", api.Credentials().URL)
	assert.Equal(t, "ABCDEFGHIJKLM", api.Credentials().Token)
	assert.Equal(t, "A1B2C3D4", api.Credentials().OrgKey)
	assert.Equal(t, "anything", api.CredentialProfileName())
	assert.IsType(t, &credentials.EnvironProvider{}, api.CredentialProvider())
	assert.Equal(t, "https://example.com", api.Session().Server())
	assert.Equal(t, "ABCDEFGHIJKLM", api.Session().Token())
	assert.Contains(t, api.Session().TokenHeader()["User-Agent"], "test2")
}

func TestNew_ExternalProvider(t *testing.T) {
	creds := testCredentials(t)
	mock := &mockCredentialProvider{sections: map[string]*credentials.Credentials{"my_section": creds}}

	api, err := New(context.Background(), Options{IntegrationName: "test3", CredentialProvider: mock, Profile: "my_section"})
	require.NoError(t, err)

	assert.Same(t, creds, api.Credentials())
	assert.Equal(t, "https://example.com", api.Credentials().URL)
	assert.Equal(t, "ABCDEFGHIJKLM", api.Credentials().Token)
	assert.Equal(t, "A1B2C3D4", api.Credentials().OrgKey)
	assert.Equal(t, "my_section", api.CredentialProfileName())
	assert.Same(t, mock, api.CredentialProvider())
	assert.Equal(t, "https://example.com", api.Session().Server())
	assert.Equal(t, "ABCDEFGHIJKLM", api.Session().Token())
	assert.Contains(t, api.Session().TokenHeader()["User-Agent"], "test3")
}

func TestNew_ProviderRaisesError(t *testing.T) {
	mock := &mockCredentialProvider{sections: map[string]*credentials.Credentials{"my_section": testCredentials(t)}}

	api, err := New(context.Background(), Options{IntegrationName: "test4", CredentialProvider: mock, Profile: "notexist"})
	require.Error(t, err)
	assert.Nil(t, api)
	assert.True(t, credentials.IsCredentialError(err))
	assert.ErrorIs(t, err, credentials.ErrProfileNotFound)
}

func TestNew_Idempotent(t *testing.T) {
	env := credentials.MapEnv{"CBAPI_URL": "https://example.com", "CBAPI_TOKEN": "T", "CBAPI_ORG_KEY": "O"}
	opts := Options{IntegrationName: "idem", Environment: env}

	a, err := New(context.Background(), opts)
	require.NoError(t, err)
	b, err := New(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Credentials(), b.Credentials())
	assert.NotSame(t, a.Credentials(), b.Credentials())
	assert.Equal(t, credentials.DefaultProfile, a.CredentialProfileName())
}

func TestNew_RawParamsWinOverProvider(t *testing.T) {
	mock := &mockCredentialProvider{sections: map[string]*credentials.Credentials{"my_section": testCredentials(t)}}

	api, err := New(context.Background(), Options{
		IntegrationName:    "raw",
		URL:                "https://raw.example.com",
		Token:              "RAW",
		CredentialProvider: mock,
		Profile:            "my_section",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://raw.example.com", api.Credentials().URL)
	assert.Nil(t, api.CredentialProvider())
	assert.Empty(t, api.CredentialProfileName())
}

func TestNew_CredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.cbc")
	require.NoError(t, os.WriteFile(path, []byte("[lab]\nurl=https://lab.example.com\ntoken=LAB\norg_key=LAB00001\n"), 0600))

	api, err := New(context.Background(), Options{
		IntegrationName: "file",
		CredentialFile:  path,
		Profile:         "lab",
		Environment:     credentials.MapEnv{},
	})
	require.NoError(t, err)
	assert.IsType(t, &credentials.FileProvider{}, api.CredentialProvider())
	assert.Equal(t, "https://lab.example.com", api.Session().Server())
	assert.Equal(t, "LAB00001", api.OrgKey())
}

func TestNew_EmptyEnvironmentFails(t *testing.T) {
	api, err := New(context.Background(), Options{IntegrationName: "empty", Environment: credentials.MapEnv{}})
	require.Error(t, err)
	assert.Nil(t, api)
	assert.ErrorIs(t, err, credentials.ErrProfileNotFound)
}

func TestNew_MissingToken(t *testing.T) {
	_, err := New(context.Background(), Options{IntegrationName: "x", URL: "https://example.com"})
	assert.ErrorIs(t, err, credentials.ErrMissingToken)
	assert.True(t, credentials.IsCredentialError(err))
}

func TestNew_ProviderMissingURL(t *testing.T) {
	creds := credentials.Default()
	creds.Token = "ABCDEFGHIJKLM"
	mock := &mockCredentialProvider{sections: map[string]*credentials.Credentials{"lab": creds}}

	api, err := New(context.Background(), Options{IntegrationName: "x", CredentialProvider: mock, Profile: "lab"})
	assert.Nil(t, api)
	assert.ErrorIs(t, err, credentials.ErrMissingURL)

	var ce *credentials.CredentialError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "mock", ce.Provider)
	assert.Equal(t, "lab", ce.Profile)
}

func TestNew_MalformedCredentialFileDoesNotUseEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.cbc")
	require.NoError(t, os.WriteFile(path, []byte("[prod\nurl=https://prod.example.com\ntoken=PROD\n"), 0600))
	env := credentials.MapEnv{"CBAPI_URL": "https://other.example.com", "CBAPI_TOKEN": "OTHER"}

	api, err := New(context.Background(), Options{IntegrationName: "x", CredentialFile: path, Profile: "prod", Environment: env})
	assert.Nil(t, api)
	assert.ErrorIs(t, err, credentials.ErrInvalidValue)
}

func TestNew_IntegrationName(t *testing.T) {
	_, err := New(context.Background(), Options{URL: "https://example.com", Token: "T"})
	assert.ErrorIs(t, err, ErrMissingIntegrationName)

	creds := testCredentials(t)
	creds.Integration = "from-creds"
	mock := &mockCredentialProvider{sections: map[string]*credentials.Credentials{"default": creds}}
	api, err := New(context.Background(), Options{CredentialProvider: mock})
	require.NoError(t, err)
	assert.Equal(t, "from-creds", api.IntegrationName())
	assert.Contains(t, api.Session().TokenHeader()[HeaderUserAgent], "from-creds")

	api, err = New(context.Background(), Options{CredentialProvider: mock, IntegrationName: "explicit", FallbackIntegrationName: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", api.IntegrationName())

	api, err = New(context.Background(), Options{URL: "https://example.com", Token: "T", FallbackIntegrationName: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "cli", api.IntegrationName())
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), Options{IntegrationName: "x", URL: "not a url", Token: "T"})
	assert.Error(t, err)
}
