package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
)

func init() {
	Register(&PushCmd{})
	Register(&PullCmd{})
}

// PushCmd implements the push command: it copies the user's local todos
// to the remote backend. Local state is never modified.
type PushCmd struct{}

func (c *PushCmd) Name() string          { return "push" }
func (c *PushCmd) Aliases() []string     { return nil }
func (c *PushCmd) Synopsis() string      { return "Upload your todos to the remote backend" }
func (c *PushCmd) Usage() string         { return "taskpad push [common flags]" }
func (c *PushCmd) Requires() Requirement { return NeedsSession }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	remote, err := a.Remote(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	userID := a.UserID()
	existing, err := remote.ListTodos(ctx, userID)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	byID := make(map[string]service.Todo, len(existing))
	for _, t := range existing {
		byID[t.ID] = t
	}

	var created, updated, failed int
	for _, t := range a.Todos.GetTodosByUser(userID) {
		var ok bool
		if prev, found := byID[t.ID]; found {
			upd, changed := diff(prev, t)
			if !changed {
				continue
			}
			ok, err = remote.UpdateTodo(ctx, t.ID, upd)
			if ok && err == nil {
				updated++
			}
		} else {
			ok, err = remote.CreateTodo(ctx, t)
			if ok && err == nil {
				created++
			}
		}
		switch {
		case err != nil:
			fmt.Fprintf(errOut, "error: push %q: %v\n", t.Title, err)
			failed++
		case !ok:
			fmt.Fprintf(errOut, "error: push %q: rejected by server\n", t.Title)
			failed++
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created %d, updated %d, failed %d\n", created, updated, failed)
	}
	if failed > 0 {
		return exitcode.BackendError
	}
	return exitcode.Success
}

// diff returns the update that turns remote into local.
func diff(remote, local service.Todo) (service.TodoUpdate, bool) {
	var upd service.TodoUpdate
	changed := false
	if remote.Title != local.Title {
		title := local.Title
		upd.Title = &title
		changed = true
	}
	if remote.Description != local.Description {
		desc := local.Description
		upd.Description = &desc
		changed = true
	}
	if remote.Completed != local.Completed {
		completed := local.Completed
		upd.Completed = &completed
		changed = true
	}
	return upd, changed
}

// PullCmd implements the pull command: remote todos of the user that are
// not yet known locally are appended to the local list.
type PullCmd struct{}

func (c *PullCmd) Name() string          { return "pull" }
func (c *PullCmd) Aliases() []string     { return nil }
func (c *PullCmd) Synopsis() string      { return "Download your todos from the remote backend" }
func (c *PullCmd) Usage() string         { return "taskpad pull [common flags]" }
func (c *PullCmd) Requires() Requirement { return NeedsSession }

func (c *PullCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PullCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	remote, err := a.Remote(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	userID := a.UserID()
	todos, err := remote.ListTodos(ctx, userID)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	// Remote todos are stored under the local user, whatever owner the
	// backend reports.
	for i := range todos {
		todos[i].UserID = userID
	}
	n := a.Todos.ImportTodos(todos, userID)

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d todos\n", n)
	}
	return exitcode.Success
}
