package cli

import (
	"fmt"

	"github.com/carbonblack/cbc-sdk-go/internal/log"
	"github.com/carbonblack/cbc-sdk-go/internal/prompt"
	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
	"github.com/spf13/cobra"
)

const defaultServerURL = "https://defense.conferdeploy.net"

var newPrompter = func(cmd *cobra.Command) *prompt.Prompter {
	return prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr())
}

var keychainCmd = &cobra.Command{
	Use:   "keychain",
	Short: "Manage credentials stored in the OS keychain",
}

var keychainStoreCmd = &cobra.Command{
	Use:   "store <profile>",
	Short: "Store credentials for a profile in the keychain",
	Long: `Prompt for the server URL, org key and API token and store them in the
OS keychain. The token is read without echo.

Use the stored profile with --keychain-service.

Examples:
  cbc keychain store default
  cbc keychain store lab --keychain-service cbc-lab`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationInteractive: "true"},
	RunE:        runKeychainStore,
}

var keychainDeleteYes bool

var keychainDeleteCmd = &cobra.Command{
	Use:         "delete <profile>",
	Short:       "Remove a profile from the keychain",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationInteractive: "true"},
	RunE:        runKeychainDelete,
}

func init() {
	rootCmd.AddCommand(keychainCmd)
	keychainCmd.AddCommand(keychainStoreCmd, keychainDeleteCmd)
	keychainDeleteCmd.Flags().BoolVarP(&keychainDeleteYes, "yes", "y", false, "delete without confirmation")
}

func runKeychainStore(cmd *cobra.Command, args []string) error {
	name := args[0]
	p := newPrompter(cmd)

	creds := credentials.Default()
	var err error
	if creds.URL, err = p.Line("URL", defaultServerURL); err != nil {
		return err
	}
	if creds.OrgKey, err = p.Line("Org key", ""); err != nil {
		return err
	}
	if creds.Token, err = p.Secret("API token"); err != nil {
		return err
	}

	kp := credentials.NewKeychainProvider(keychainServiceOrDefault())
	if err := kp.Store(name, creds); err != nil {
		return err
	}

	log.Info("stored keychain credentials", "service", kp.Service(), "profile", name)
	fmt.Fprintf(ui.Stdout(), "%s stored profile %q in keychain service %q\n", ui.OKTag(), name, kp.Service())
	ui.Infof("Use it with: cbc --keychain-service %s --profile %s creds check", kp.Service(), name)
	return nil
}

func runKeychainDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	kp := credentials.NewKeychainProvider(keychainServiceOrDefault())

	if !keychainDeleteYes {
		ok, err := newPrompter(cmd).Confirm(fmt.Sprintf("Delete profile %q from keychain service %q?", name, kp.Service()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ui.Stdout(), "aborted")
			return nil
		}
	}
	if err := kp.Delete(name); err != nil {
		return err
	}

	log.Info("deleted keychain credentials", "service", kp.Service(), "profile", name)
	fmt.Fprintf(ui.Stdout(), "profile %q removed from keychain service %q\n", name, kp.Service())
	return nil
}
