// Command aspinfo resolves program-counter values against a compiled
// program's ".aspd" debug information file.
package main

import (
	"fmt"
	"os"

	"github.com/asplang/asp-sub000/cmd/aspinfo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
