// Package main provides the snowduck CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/snowduck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
