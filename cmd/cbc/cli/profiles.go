package cli

import (
	"errors"
	"fmt"

	"github.com/carbonblack/cbc-sdk-go/internal/log"
	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/carbonblack/cbc-sdk-go/pkg/connection"
	"github.com/carbonblack/cbc-sdk-go/pkg/credentials"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentChecks bounds in-flight requests during "profiles check".
const maxConcurrentChecks = 4

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Work with credential file profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the profiles in the credential file",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every profile in the credential file against the API",
	Long: `Check each profile in the credential file concurrently and print a
status table. Exits non-zero when any profile fails.

Examples:
  cbc profiles check
  cbc profiles check --credential-file ./credentials.cbc`,
	Args: cobra.NoArgs,
	RunE: runProfilesCheck,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesListCmd, profilesCheckCmd)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	fp := fileProvider()
	names, err := fp.Profiles()
	if err != nil {
		return err
	}

	if jsonOut {
		if names == nil {
			names = []string{}
		}
		return printJSON(names)
	}
	if len(names) == 0 {
		ui.Warnf("no profiles found in %v", fp.Paths())
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(ui.Stdout(), name)
	}
	return nil
}

type profileStatus struct {
	Profile string `json:"profile"`
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

func runProfilesCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fp := fileProvider()
	names, err := fp.Profiles()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no profiles found in %v", fp.Paths())
	}

	results := make([]profileStatus, len(names))
	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	for i, name := range names {
		g.Go(func() error {
			results[i] = checkProfile(cmd, fp, name)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		rows := make([][]string, len(results))
		for i, r := range results {
			tag := ui.OKTag()
			if !r.OK {
				tag = ui.FailTag()
			}
			rows[i] = []string{r.Profile, tag + " " + r.Status, r.Detail}
		}
		ui.Table([]string{"PROFILE", "STATUS", "DETAIL"}, rows)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(results))
	}
	return nil
}

func checkProfile(cmd *cobra.Command, provider credentials.Provider, name string) profileStatus {
	ctx := cmd.Context()
	status := profileStatus{Profile: name}

	opts := connectOptions(provider, name)
	opts.Logger = log.With("profile", name)
	api, err := connection.New(ctx, opts)
	if err != nil {
		status.Status = "invalid"
		status.Detail = err.Error()
		return status
	}
	if err := api.Session().Get(ctx, current.checkPath, nil); err != nil {
		status.Status = statusText(err)
		status.Detail = err.Error()
		return status
	}
	status.OK = true
	status.Status = "ok"
	return status
}

func statusText(err error) string {
	switch {
	case errors.Is(err, connection.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, connection.ErrObjectNotFound):
		return "not found"
	case errors.Is(err, connection.ErrServer):
		return "server error"
	case errors.Is(err, connection.ErrClient):
		return "rejected"
	}
	return "error"
}
