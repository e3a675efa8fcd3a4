// Package main is the entry point for the cloudweave CLI.
//
// cloudweave provisions a small cluster across several compute backends:
// one manager first, then worker groups on every backend in parallel, all
// joined with the secret the manager publishes once it is up.
//
// For detailed usage information, run:
//
//	cloudweave --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/cloudweave/cmd/cloudweave/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
