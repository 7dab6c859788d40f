// Package config loads the cbc CLI settings from ~/.carbonblack/cbc.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCheckPath is the endpoint used by "cbc creds check".
const DefaultCheckPath = "/policyservice/v1/orgs/{org_key}/policies/summary"

// GlobalConfig holds CLI defaults. Command-line flags override them.
type GlobalConfig struct {
	Profile         string        `yaml:"profile"`
	CredentialFile  string        `yaml:"credential_file"`
	Integration     string        `yaml:"integration"`
	KeychainService string        `yaml:"keychain_service"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	CheckPath       string        `yaml:"check_path"`
	Debug           DebugConfig   `yaml:"debug"`
}

// DebugConfig controls debug log files.
type DebugConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// DefaultGlobalConfig returns the default configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Timeout:   30 * time.Second,
		CheckPath: DefaultCheckPath,
		Debug: DebugConfig{
			RetentionDays: 14,
		},
	}
}

// GlobalConfigDir returns the path to ~/.carbonblack.
func GlobalConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".carbonblack")
	}
	return filepath.Join(homeDir, ".carbonblack")
}

// GlobalConfigPath returns the config file path, honoring CBC_CONFIG.
func GlobalConfigPath() string {
	if p := os.Getenv("CBC_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GlobalConfigDir(), "cbc.yaml")
}

// LoadGlobal reads the config file and applies environment overrides.
// A missing file yields the defaults. A malformed file returns the defaults
// together with the parse error.
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	var loadErr error
	path := GlobalConfigPath()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = DefaultGlobalConfig()
			loadErr = fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if v := os.Getenv("CBC_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("CBC_CREDENTIAL_FILE"); v != "" {
		cfg.CredentialFile = v
	}
	if v := os.Getenv("CBC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	cfg.CredentialFile = ExpandHome(cfg.CredentialFile)

	return cfg, loadErr
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
