// Package main is the entry point for the todoist-mcp server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todoistmcp/internal/cli"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(cli.DefaultGatewayFactory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
