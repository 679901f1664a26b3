package main

import (
	"os"

	"github.com/printwatch/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Execute already printed the error, so we just exit
		os.Exit(1)
	}
}
