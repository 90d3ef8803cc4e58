package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cjmtoolkit/cjmtoolkit/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(app, common version.Version) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the cjmtoolkit version, the settings library version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "cjmtoolkit v%s\n", app)
			_, _ = fmt.Fprintf(out, "settings library v%s\n", common)
			_, _ = fmt.Fprintf(out, "built %s (%s) with %s\n", version.BuildDate, version.GitCommit, runtime.Version())
		},
	}
}
