package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/spf13/cobra"
)

var requestData string

var requestCmd = &cobra.Command{
	Use:   "request <METHOD> <path>",
	Short: "Send an authenticated API request",
	Long: `Send a request with the resolved credentials and print the JSON
response. {org_key} in the path is replaced with the profile's org key.

Examples:
  cbc request GET /appservices/v6/orgs/{org_key}/devices/_search
  cbc request POST /appservices/v6/orgs/{org_key}/alerts/_search --data '{"rows":5}'`,
	Args: cobra.ExactArgs(2),
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
}

func runRequest(cmd *cobra.Command, args []string) error {
	method := strings.ToUpper(args[0])
	path := args[1]

	var body any
	if requestData != "" {
		if !json.Valid([]byte(requestData)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		body = json.RawMessage(requestData)
	}

	api, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	var out json.RawMessage
	if err := api.Session().Do(cmd.Context(), method, path, body, &out); err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		// Not JSON; print as received.
		fmt.Fprintln(ui.Stdout(), string(out))
		return nil
	}
	fmt.Fprintln(ui.Stdout(), pretty.String())
	return nil
}
