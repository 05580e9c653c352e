package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "aspengine",
	Short:   "Run and inspect compiled Asp bytecode images",
	Version: Version,
	Long: `aspengine loads a compiled Asp bytecode image (".aspe") against a
fixed-size data arena and either runs it to completion or disassembles
its instruction stream.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}
