// Package main is the entry point for the registrar command line.
package main

import (
	"fmt"
	"os"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	err := rootCmd.Execute()
	shutdown(os.Stderr)
	if err != nil {
		os.Exit(exitCode(err))
	}
}
