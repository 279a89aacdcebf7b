package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information variables that are set via ldflags during build.
//
//nolint:gochecknoglobals // Required for ldflags-based build stamping.
var (
	// Version is the application version (e.g., v1.0.0).
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "none"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(out, Version)
				return err
			}
			_, err := fmt.Fprintf(out, "codeparity %s (commit %s, built %s)\n", Version, Commit, BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}
