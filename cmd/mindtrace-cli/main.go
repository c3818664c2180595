package main

import (
	"os"

	"github.com/futig/mindtrace-ai/cmd/mindtrace-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
