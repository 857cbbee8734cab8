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
	"taskpad/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	description optionalString
}

func (c *EditCmd) Name() string          { return "edit" }
func (c *EditCmd) Aliases() []string     { return nil }
func (c *EditCmd) Synopsis() string      { return "Change a todo's title or description" }
func (c *EditCmd) Usage() string         { return "taskpad edit [--title <text>] [--desc <text>] <ref>" }
func (c *EditCmd) Requires() Requirement { return NeedsSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title = optionalString{}
	c.description = optionalString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.description.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --desc)")
		return exitcode.UserError
	}

	var upd service.TodoUpdate
	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if title == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		upd.Title = &title
	}
	if c.description.set {
		desc := strings.TrimSpace(c.description.value)
		upd.Description = &desc
	}

	todo, code := resolveArgs(a, args, errOut)
	if code != exitcode.Success {
		return code
	}

	a.Todos.UpdateTodo(todo.ID, upd)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
