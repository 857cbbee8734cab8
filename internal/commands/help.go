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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "taskpad help" }
func (c *HelpCmd) Requires() Requirement { return NeedsConfig }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskpad                                            List your todos
  taskpad list [common flags] [--open]
  taskpad add [common flags] [--desc <text>] <title...>
  taskpad edit [common flags] [--title <text>] [--desc <text>] <ref>
  taskpad done [common flags] <ref>                  Toggle completion
  taskpad rm [common flags] <ref>
  taskpad suggest [common flags] [--add <n,m,...> | --all] <input...>
  taskpad clear [common flags] --all
  taskpad login [common flags] --email <email> --password <password>
  taskpad register [common flags] --name <name> --email <email> --password <password>
  taskpad logout [common flags]
  taskpad whoami [common flags]
  taskpad push [common flags]
  taskpad pull [common flags]
  taskpad connect [common flags]
  taskpad disconnect [common flags]
  taskpad ui [common flags]
  taskpad serve [common flags] [--addr <host:port>] [--delay <duration>]
  taskpad config [common flags]
  taskpad help
  taskpad version

A <ref> is a todo number as shown by list, or a todo id.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
