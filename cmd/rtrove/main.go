// Command rtrove runs the Rtrove data store: an HTTP API over the local
// store plus maintenance commands.
package main

import (
	"context"
	"os"

	"rtrove/internal/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		observability.GlobalLogger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
