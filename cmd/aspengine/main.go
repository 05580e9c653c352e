// Command aspengine loads a compiled Asp bytecode image and runs it, or
// disassembles it, against a caller-sized data arena.
package main

import (
	"fmt"
	"os"

	"github.com/asplang/asp-sub000/cmd/aspengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
