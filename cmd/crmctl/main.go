package main

import (
	"os"

	"github.com/xavierca1/ligue-crm/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
