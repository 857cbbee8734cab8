package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd opens the interactive todo screen.
type UICmd struct{}

func (c *UICmd) Name() string          { return "ui" }
func (c *UICmd) Aliases() []string     { return []string{"tui"} }
func (c *UICmd) Synopsis() string      { return "Open the interactive todo screen" }
func (c *UICmd) Usage() string         { return "taskpad ui [common flags]" }
func (c *UICmd) Requires() Requirement { return NeedsSession }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	user := a.Auth.State().User
	if err := tui.Run(ctx, a.Todos, *user, tea.WithOutput(out), tea.WithAltScreen()); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
