package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return []string{"delete"} }
func (c *RmCmd) Synopsis() string      { return "Delete a todo" }
func (c *RmCmd) Usage() string         { return "taskpad rm <ref>" }
func (c *RmCmd) Requires() Requirement { return NeedsSession }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	todo, code := resolveArgs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	a.Todos.DeleteTodo(todo.ID)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
