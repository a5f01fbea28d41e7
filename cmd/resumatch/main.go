// Package main provides the resumatch command: an HTTP matching service plus local
// ingest and rank commands over the same data directory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
