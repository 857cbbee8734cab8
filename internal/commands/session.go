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
	"taskpad/internal/service"
	"taskpad/internal/validate"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return nil }
func (c *LoginCmd) Synopsis() string      { return "Log in to the taskpad server" }
func (c *LoginCmd) Usage() string         { return "taskpad login --email <email> --password <password>" }
func (c *LoginCmd) Requires() Requirement { return NeedsStores }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if c.email == "" || c.password == "" {
		fmt.Fprintln(errOut, "error: --email and --password are required")
		return exitcode.UserError
	}

	if !a.Auth.Login(ctx, c.email, c.password) {
		fmt.Fprintf(errOut, "error: login failed: %s\n", a.Auth.State().LastError)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		u := a.Auth.State().User
		fmt.Fprintf(out, "logged in as %s <%s>\n", u.Name, u.Email)
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskpad register --name <name> --email <email> --password <password>"
}
func (c *RegisterCmd) Requires() Requirement { return NeedsStores }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.name, "n", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if a.Auth.Register(ctx, c.name, c.email, c.password) {
		if !cfg.Quiet {
			fmt.Fprintf(out, "registered %s (run: taskpad login)\n", c.email)
		}
		return exitcode.Success
	}

	fmt.Fprintf(errOut, "error: registration failed: %s\n", a.Auth.State().LastError)
	req := service.RegisterRequest{Name: c.name, Email: c.email, Password: c.password}
	if validate.RegisterRequest(req) != nil {
		return exitcode.UserError
	}
	return exitcode.BackendError
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string          { return "logout" }
func (c *LogoutCmd) Aliases() []string     { return nil }
func (c *LogoutCmd) Synopsis() string      { return "End the current session" }
func (c *LogoutCmd) Usage() string         { return "taskpad logout [common flags]" }
func (c *LogoutCmd) Requires() Requirement { return NeedsStores }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	wasLoggedIn := a.Auth.State().IsAuthenticated

	// Always clear; a stale token slot may outlive the session.
	a.Auth.Logout()

	if !cfg.Quiet {
		if wasLoggedIn {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "not logged in")
		}
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string         { return "taskpad whoami [common flags]" }
func (c *WhoamiCmd) Requires() Requirement { return NeedsStores }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	a.Auth.VerifyToken()
	if !a.Auth.Authenticated() {
		fmt.Fprintln(errOut, "error: not logged in (run: taskpad login)")
		return exitcode.AuthError
	}
	output.FormatSession(out, a.Auth.State())
	return exitcode.Success
}
