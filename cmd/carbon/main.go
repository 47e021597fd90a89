// Package main is the entry point for the carbon CLI tool.
package main

import (
	"os"

	"github.com/glint-tools/carbon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
