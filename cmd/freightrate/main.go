// Package main is the entry point for the freightrate service and CLI.
package main

import (
	"os"

	"github.com/smallbiznis/freightrate/cmd/freightrate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
