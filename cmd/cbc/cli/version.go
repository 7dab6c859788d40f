package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/carbonblack/cbc-sdk-go/internal/ui"
	"github.com/carbonblack/cbc-sdk-go/pkg/connection"
	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of cbc",
	Run: func(cmd *cobra.Command, args []string) {
		out := ui.Stdout()
		fmt.Fprintf(out, "cbc %s\n", version)
		fmt.Fprintf(out, "  sdk:    %s\n", connection.Version)
		if commit != "none" {
			fmt.Fprintf(out, "  commit: %s\n", commit)
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(out, "  go:     %s\n", info.GoVersion)
		}
	},
}
