package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/asplang/asp-sub000/internal/asp/debuginfo"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate <program.aspd> <pc>",
	Short: "Resolve a program counter to a source location",
	Long: `Locate reads a compiled program's ".aspd" debug info file and prints
the source file, line and column the nearest preceding record maps pc to.`,
	Args: cobra.ExactArgs(2),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	pc, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return fmt.Errorf("parsing pc: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening debug info: %w", err)
	}
	defer f.Close()

	spec, err := debuginfo.Read(f)
	if err != nil {
		return fmt.Errorf("reading debug info: %w", err)
	}

	rec, file, ok := spec.Locate(uint32(pc))
	if !ok {
		return fmt.Errorf("pc %d precedes every record", pc)
	}
	if file == "" {
		fmt.Printf("pc=%d line=%d column=%d (no file name)\n", rec.PC, rec.Line, rec.Column)
		return nil
	}
	fmt.Printf("%s:%d:%d\n", file, rec.Line, rec.Column)
	return nil
}
