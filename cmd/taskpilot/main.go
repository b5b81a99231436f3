// Package main is the entry point for the taskpilot server.
package main

import (
	"fmt"
	"os"

	"github.com/hfujita/taskpilot/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
