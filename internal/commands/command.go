// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskpad/internal/app"
	"taskpad/internal/config"
)

// Requirement states what a command needs before it runs.
type Requirement int

const (
	// NeedsConfig commands only receive the config; the app is nil.
	NeedsConfig Requirement = iota

	// NeedsStores commands receive the restored stores.
	NeedsStores

	// NeedsSession commands additionally require a verified session.
	NeedsSession
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the dispatcher must set up.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// a is nil if Requires() returns NeedsConfig.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int
}
