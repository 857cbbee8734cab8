// Package main is the entry point for the taskpad CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskpad/internal/app"
	"taskpad/internal/cli"
	"taskpad/internal/commands"
	"taskpad/internal/config"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Stores are restored from the configured storage on every run
	factory := func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		return app.New(ctx, cfg, app.NewLogger(cfg.Debug, os.Stderr))
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
