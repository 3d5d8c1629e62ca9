package main

import (
	"os"
)

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
