// Package main provides the sqlshape command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlshape/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
