package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

func (c *AddCmd) Name() string          { return "add" }
func (c *AddCmd) Aliases() []string     { return []string{"create"} }
func (c *AddCmd) Synopsis() string      { return "Create a todo" }
func (c *AddCmd) Usage() string         { return "taskpad add [--desc <text>] <title...>" }
func (c *AddCmd) Requires() Requirement { return NeedsSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	a.Todos.AddTodo(title, strings.TrimSpace(c.description), a.UserID())

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
