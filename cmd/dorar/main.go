// Package main is the entry point for the dorar CLI.
package main

import (
	"os"

	"github.com/jmylchreest/dorar/cmd/dorar/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
