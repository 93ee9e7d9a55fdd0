package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, injected via -ldflags at release time.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "emergence %s\n", version)
		if gitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", gitCommit)
		}
		if buildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", buildDate)
		}
	},
}
