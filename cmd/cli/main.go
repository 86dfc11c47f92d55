// Package main is the entry point for the gpu-spend CLI.
package main

import (
	"os"

	"gpu-spend/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
