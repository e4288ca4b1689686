// Command glaximini runs the collaborative animation server.
package main

import (
	"os"

	"github.com/custodia-labs/glaximini/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
