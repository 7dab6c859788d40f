// Package cli implements the cbc command-line interface using Cobra.
// It resolves Carbon Black Cloud credentials and issues authenticated
// API requests with them.
package cli

import (
	"path/filepath"
	"time"

	"github.com/carbonblack/cbc-sdk-go/internal/config"
	"github.com/carbonblack/cbc-sdk-go/internal/log"
	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/spf13/cobra"
)

var (
	verbose         bool
	jsonOut         bool
	profile         string
	credentialFile  string
	integration     string
	keychainService string
	awsSecret       string
	awsRegion       string
)

// settings are the flag values merged over the global config.
type settings struct {
	profile         string
	credentialFile  string
	integration     string
	keychainService string
	awsSecret       string
	awsRegion       string
	timeout         time.Duration
	maxRetries      int
	checkPath       string
}

var current settings

// annotationInteractive marks commands that prompt, so debug output stays
// off the terminal.
const annotationInteractive = "interactive"

var rootCmd = &cobra.Command{
	Use:   "cbc",
	Short: "cbc - Carbon Black Cloud API client",
	Long: `cbc resolves Carbon Black Cloud API credentials and issues
authenticated requests with them.

Credentials come from, in order: the keychain or AWS Secrets Manager when
selected with a flag, otherwise the credential file (credentials.cbc) when it
holds the requested profile, otherwise CBAPI_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

		globalCfg, err := config.LoadGlobal()
		if err != nil {
			ui.Warnf("ignoring global config: %v", err)
		}
		current = merge(globalCfg)

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			Interactive:   cmd.Annotations[annotationInteractive] == "true",
			DebugDir:      filepath.Join(config.GlobalConfigDir(), "debug"),
			RetentionDays: globalCfg.Debug.RetentionDays,
			Stderr:        cmd.ErrOrStderr(),
		}); err != nil {
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

func merge(cfg *config.GlobalConfig) settings {
	s := settings{
		profile:         cfg.Profile,
		credentialFile:  cfg.CredentialFile,
		integration:     cfg.Integration,
		keychainService: cfg.KeychainService,
		awsSecret:       awsSecret,
		awsRegion:       awsRegion,
		timeout:         cfg.Timeout,
		maxRetries:      cfg.MaxRetries,
		checkPath:       cfg.CheckPath,
	}
	if profile != "" {
		s.profile = profile
	}
	if credentialFile != "" {
		s.credentialFile = config.ExpandHome(credentialFile)
	}
	if integration != "" {
		s.integration = integration
	}
	if keychainService != "" {
		s.keychainService = keychainService
	}
	return s
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "credential profile to use (env: CBC_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&credentialFile, "credential-file", "", "credential file to read instead of the default locations")
	rootCmd.PersistentFlags().StringVar(&integration, "integration", "", "integration name reported in the User-Agent")
	rootCmd.PersistentFlags().StringVar(&keychainService, "keychain-service", "", "read credentials from the OS keychain under this service")
	rootCmd.PersistentFlags().StringVar(&awsSecret, "aws-secret", "", "read credentials from this AWS Secrets Manager secret")
	rootCmd.PersistentFlags().StringVar(&awsRegion, "aws-region", "", "AWS region for --aws-secret")
}
