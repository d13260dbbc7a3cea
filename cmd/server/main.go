// Package main is the entry point for the pessoas server.
//
// The main package stays minimal: flag parsing, configuration and wiring
// live in internal/cli and internal/server.
package main

import (
	"fmt"
	"os"

	"github.com/sakif/pessoas/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
