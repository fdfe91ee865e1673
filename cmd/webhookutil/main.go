// Command webhookutil sends JSON webhook messages.
//
// Usage:
//
//	webhookutil <URL> [flags]
//
// Run with -h for the full flag list.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"webhookutil/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.NewApp().Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
