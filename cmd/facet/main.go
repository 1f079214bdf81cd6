package main

import (
	"os"

	"github.com/facet-dev/facet/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
