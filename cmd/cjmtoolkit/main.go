// Package main is the cjmtoolkit command.
package main

import (
	"os"

	"github.com/cjmtoolkit/cjmtoolkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
