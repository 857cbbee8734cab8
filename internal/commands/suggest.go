package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd implements the suggest command.
type SuggestCmd struct {
	add string
	all bool
}

func (c *SuggestCmd) Name() string          { return "suggest" }
func (c *SuggestCmd) Aliases() []string     { return nil }
func (c *SuggestCmd) Synopsis() string      { return "Propose todos for a topic" }
func (c *SuggestCmd) Usage() string         { return "taskpad suggest [--add <n,m,...> | --all] <input...>" }
func (c *SuggestCmd) Requires() Requirement { return NeedsSession }

func (c *SuggestCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.add, "add", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *SuggestCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		fmt.Fprintln(errOut, "error: input required")
		return exitcode.UserError
	}
	if c.add != "" && c.all {
		fmt.Fprintln(errOut, "error: cannot use both --add and --all")
		return exitcode.UserError
	}

	a.Todos.GenerateSuggestions(ctx, input)
	defer a.Todos.ClearSuggestions()

	suggestions := a.Todos.State().Suggestions
	if len(suggestions) == 0 {
		fmt.Fprintf(errOut, "error: no suggestions for %q\n", input)
		return exitcode.BackendError
	}

	var picked []service.TodoSuggestion
	switch {
	case c.all:
		picked = suggestions
	case c.add != "":
		nums, err := parsePicks(c.add, len(suggestions))
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		for _, n := range nums {
			picked = append(picked, suggestions[n-1])
		}
	}

	if picked == nil {
		output.FormatHeader(out, "Suggestions for "+input)
		for i, s := range suggestions {
			output.FormatSuggestion(out, i+1, s)
		}
		return exitcode.Success
	}

	userID := a.UserID()
	for _, s := range picked {
		a.Todos.AddSuggestionAsTodo(s, userID)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "added %d todos\n", len(picked))
	}
	return exitcode.Success
}

// parsePicks parses a comma-separated list of 1-based suggestion numbers.
// Duplicates are dropped; every number must be within 1..max.
func parsePicks(s string, max int) ([]int, error) {
	var nums []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if !isAllDigits(part) {
			return nil, fmt.Errorf("invalid suggestion number: %q", part)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > max {
			return nil, fmt.Errorf("suggestion number out of range: %s", part)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	return nums, nil
}
