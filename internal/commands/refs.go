package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
)

// TodoRef is a parsed todo reference: a 1-based position in the user's
// list, or a todo id.
type TodoRef struct {
	Num int
	ID  string
}

var (
	// ErrTodoRefRequired indicates no todo reference was provided.
	ErrTodoRefRequired = errors.New("todo reference required")

	// ErrOutOfRange indicates a position outside the user's list.
	ErrOutOfRange = errors.New("todo number out of range")

	// ErrTodoNotFound indicates an id that matches no todo of the user.
	ErrTodoNotFound = errors.New("todo not found")
)

// ParseTodoRef parses a todo reference from args.
// An all-digit argument is a position; anything else is an id.
func ParseTodoRef(args []string) (TodoRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TodoRef{}, ErrTodoRefRequired
	}
	if len(args) > 1 {
		return TodoRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TodoRef{}, fmt.Errorf("invalid todo reference: %s", ref)
		}
		return TodoRef{Num: num}, nil
	}
	return TodoRef{ID: ref}, nil
}

// ResolveTodo finds the todo ref points to in todos.
func ResolveTodo(todos []service.Todo, ref TodoRef) (service.Todo, error) {
	if ref.ID == "" {
		if ref.Num < 1 || ref.Num > len(todos) {
			return service.Todo{}, fmt.Errorf("%w: %d", ErrOutOfRange, ref.Num)
		}
		return todos[ref.Num-1], nil
	}
	for _, t := range todos {
		if t.ID == ref.ID {
			return t, nil
		}
	}
	return service.Todo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, ref.ID)
}

// resolveArgs resolves the todo named by args among the current user's
// todos. On failure it reports the error and returns a non-zero exit code.
func resolveArgs(a *app.App, args []string, errOut io.Writer) (service.Todo, int) {
	ref, err := ParseTodoRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Todo{}, exitcode.UserError
	}
	todo, err := ResolveTodo(a.Todos.GetTodosByUser(a.UserID()), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Todo{}, exitcode.UserError
	}
	return todo, exitcode.Success
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
