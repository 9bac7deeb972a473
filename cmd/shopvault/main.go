package main

import (
	"os"

	"github.com/jmartens/shopvault/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
