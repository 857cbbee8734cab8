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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. Running it on a completed todo
// reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string      { return "Toggle a todo's completion" }
func (c *DoneCmd) Usage() string         { return "taskpad done <ref>" }
func (c *DoneCmd) Requires() Requirement { return NeedsSession }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	todo, code := resolveArgs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	a.Todos.ToggleTodo(todo.ID)

	if !cfg.Quiet {
		if todo.Completed {
			fmt.Fprintln(out, "reopened")
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
