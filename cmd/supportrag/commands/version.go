package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/54b3r/supportrag-go/internal/version"
)

// NewVersionCmd constructs the `supportrag version` subcommand. It prints the
// values injected at build time via -ldflags.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the supportrag version, git commit, and build date",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "supportrag %s (commit: %s, built: %s, %s)\n",
				version.Version, version.Commit, version.BuildDate, runtime.Version())
		},
	}
}
