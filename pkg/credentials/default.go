package credentials

import "log/slog"

// DefaultOptions configures DefaultProvider.
type DefaultOptions struct {
	// CredentialFile is an explicit credential file path. Empty means none.
	CredentialFile string
	// Profile is the profile that will be looked up.
	Profile string
	// Env is the environment for the fallback provider (nil reads os env).
	Env Env
	// Logger receives selection and permission diagnostics.
	Logger *slog.Logger
}

// DefaultProvider selects the provider used when the caller supplies neither
// raw credentials nor a provider of their own.
//
// A credential file is selected when it holds the requested profile, or when
// it cannot be read or parsed so the lookup reports that failure. A missing
// file or section selects the environment provider. Selection is final:
// lookups do not fall back to another provider.
func DefaultProvider(opts DefaultOptions) Provider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	profile := profileOrDefault(opts.Profile)

	if opts.CredentialFile != "" {
		fp := NewFileProvider([]string{opts.CredentialFile}, WithFileLogger(logger))
		if err := fp.loadErr(); err != nil {
			logger.Warn("credential file unreadable, not falling back to environment",
				"path", opts.CredentialFile, "error", err)
			return fp
		}
		if fp.HasProfile(profile) {
			logger.Debug("selected credential file provider",
				"path", opts.CredentialFile, "profile", profile)
			return fp
		}
		logger.Debug("profile not in credential file, using environment",
			"path", opts.CredentialFile, "profile", profile)
	}

	logger.Debug("selected environment credential provider", "profile", profile)
	return NewEnvironProvider(opts.Env)
}
