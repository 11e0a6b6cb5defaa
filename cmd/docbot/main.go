// Command docbot answers questions about technical documentation.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docbot/internal/adapters/driving/cli"
	"github.com/custodia-labs/docbot/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	_ = godotenv.Load()

	if version == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			version = info.Main.Version
		}
	}
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}
