package cmd

import "github.com/spf13/cobra"

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "aspinfo",
	Short:   "Resolve program counters against a compiled program's debug info",
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
