// Command corpusctl ingests civic data files into a vector store and
// manages the stored vectors.
package main

import (
	"os"

	"github.com/civictech-labs/corpusctl/internal/adapters/driving/cli"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=1.2.3" ./cmd/corpusctl
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
