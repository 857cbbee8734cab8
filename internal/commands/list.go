package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
)

func init() {
	Register(&ListCmd{})
	Register(&ClearCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	open bool
}

func (c *ListCmd) Name() string          { return "list" }
func (c *ListCmd) Aliases() []string     { return []string{"ls"} }
func (c *ListCmd) Synopsis() string      { return "List your todos" }
func (c *ListCmd) Usage() string         { return "taskpad list [--open]" }
func (c *ListCmd) Requires() Requirement { return NeedsSession }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	todos := a.Todos.GetTodosByUser(a.UserID())

	// Numbers are positions in the full list, so they stay valid refs
	// when completed todos are hidden.
	shown := 0
	for i, t := range todos {
		if c.open && t.Completed {
			continue
		}
		output.FormatTodo(out, i+1, t)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no todos found")
	}
	return exitcode.Success
}

// ClearCmd implements the clear command.
type ClearCmd struct {
	all bool
}

func (c *ClearCmd) Name() string          { return "clear" }
func (c *ClearCmd) Aliases() []string     { return nil }
func (c *ClearCmd) Synopsis() string      { return "Remove every stored todo" }
func (c *ClearCmd) Usage() string         { return "taskpad clear --all" }
func (c *ClearCmd) Requires() Requirement { return NeedsStores }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if !c.all {
		fmt.Fprintln(errOut, "error: clear removes the todos of every user; pass --all to confirm")
		return exitcode.UserError
	}

	a.Todos.ClearTodos()

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
