// Package main is the entry point for the olfactory CLI.
//
// Usage:
//
//	olfactory [flags] <command> [args]
//
// Commands:
//
//	train        - Learn token to note mappings from the training corpus
//	predict      - Suggest top, middle and base notes for a memory
//	interactive  - Describe memories one line at a time
//	mappings     - List stored snapshots or show one snapshot's mappings
package main

import (
	"fmt"
	"os"

	"github.com/cognicore/olfactory/cmd/olfactory/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
