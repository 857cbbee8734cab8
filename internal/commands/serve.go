package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/gate"
	"taskpad/internal/server"
)

// DefaultServeAddr is the listen address of the development server.
const DefaultServeAddr = "localhost:3000"

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the development server.
type ServeCmd struct {
	addr  string
	delay time.Duration
}

func (c *ServeCmd) Name() string          { return "serve" }
func (c *ServeCmd) Aliases() []string     { return nil }
func (c *ServeCmd) Synopsis() string      { return "Run the development server" }
func (c *ServeCmd) Usage() string         { return "taskpad serve [--addr <host:port>] [--delay <duration>]" }
func (c *ServeCmd) Requires() Requirement { return NeedsConfig }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", DefaultServeAddr, "")
	fs.DurationVar(&c.delay, "delay", server.DefaultDelay, "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if c.delay < 0 {
		fmt.Fprintln(errOut, "error: --delay must not be negative")
		return exitcode.UserError
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Options{
		Delay:  c.delay,
		Gate:   gate.Gate{EnforcePrivate: cfg.EnforcePrivate},
		Logger: app.NewLogger(cfg.Debug, errOut),
	})

	if !cfg.Quiet {
		fmt.Fprintf(out, "serving on http://%s\n", c.addr)
	}
	if err := srv.Run(ctx, c.addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
