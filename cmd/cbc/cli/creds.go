package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/carbonblack/cbc-sdk-go/pkg/connection"
	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
	"github.com/spf13/cobra"
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Inspect the resolved credentials",
}

var credsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the credentials cbc would use",
	Long: `Resolve credentials for the active profile and print them with the
token redacted.

Examples:
  cbc creds show
  cbc creds show --profile production
  cbc creds show --keychain-service cbc-sdk --profile lab`,
	Args: cobra.NoArgs,
	RunE: runCredsShow,
}

var credsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the credentials against the API",
	Long: `Resolve credentials and issue an authenticated GET against the check
path (check_path in cbc.yaml, default ` + "`/policyservice/v1/orgs/{org_key}/policies/summary`" + `).`,
	Args: cobra.NoArgs,
	RunE: runCredsCheck,
}

func init() {
	rootCmd.AddCommand(credsCmd)
	credsCmd.AddCommand(credsShowCmd, credsCheckCmd)
}

type credsReport struct {
	Provider    string            `json:"provider"`
	Profile     string            `json:"profile"`
	Integration string            `json:"integration"`
	Values      map[string]string `json:"values"`
}

func runCredsShow(cmd *cobra.Command, args []string) error {
	api, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	report := credsReport{
		Provider:    "parameters",
		Profile:     api.CredentialProfileName(),
		Integration: api.IntegrationName(),
		Values:      api.Credentials().Values(),
	}
	if p := api.CredentialProvider(); p != nil {
		report.Provider = p.Name()
	}
	report.Values[credentials.KeyToken] = credentials.Redact(report.Values[credentials.KeyToken])

	if jsonOut {
		return printJSON(report)
	}

	keys := make([]string, 0, len(report.Values))
	for k := range report.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := [][2]string{
		{"provider", report.Provider},
		{"profile", report.Profile},
		{"integration_name", report.Integration},
	}
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, report.Values[k]})
	}
	ui.KeyValues(pairs)
	return nil
}

func runCredsCheck(cmd *cobra.Command, args []string) error {
	api, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	if err := api.Session().Get(cmd.Context(), current.checkPath, nil); err != nil {
		if errors.Is(err, connection.ErrUnauthorized) {
			return fmt.Errorf("credentials rejected by %s: %w", api.Session().Server(), err)
		}
		return err
	}
	fmt.Fprintf(ui.Stdout(), "%s credentials for profile %q accepted by %s\n",
		ui.OKTag(), api.CredentialProfileName(), api.Session().Server())
	return nil
}
