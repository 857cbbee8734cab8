// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskpad/internal/service"
	"taskpad/internal/store/authstore"
)

const (
	// ListSeparator is the separator line for sections.
	ListSeparator = "------------"

	// UpdatedLabel marks todos modified after creation.
	UpdatedLabel = "(updated)"
)

// styles renders for w. Writers that are not terminals get plain text.
type styles struct {
	done  lipgloss.Style
	faint lipgloss.Style
}

func stylesFor(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		done:  r.NewStyle().Strikethrough(true).Faint(true),
		faint: r.NewStyle().Faint(true),
	}
}

// FormatTodo formats a todo line.
// Format: "{N:>4}  [x] {TITLE}[ (updated)]\n", then the description, if
// any, indented under the title.
func FormatTodo(w io.Writer, num int, todo service.Todo) {
	st := stylesFor(w)
	mark := "[ ]"
	title := normalizeTitle(todo.Title)
	if todo.Completed {
		mark = "[x]"
		title = st.done.Render(title)
	}
	if todo.Updated() {
		title += " " + st.faint.Render(UpdatedLabel)
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, mark, title)

	if desc := normalizeText(todo.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", st.faint.Render(desc))
	}
}

// FormatSuggestion formats a numbered suggestion with its description.
func FormatSuggestion(w io.Writer, num int, s service.TodoSuggestion) {
	st := stylesFor(w)
	fmt.Fprintf(w, "%4d  %s\n", num, normalizeTitle(s.Title))
	if desc := normalizeText(s.Description); desc != "" {
		fmt.Fprintf(w, "      %s\n", st.faint.Render(desc))
	}
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatSession formats the logged-in identity and, for JWT tokens, the
// token's expiry.
func FormatSession(w io.Writer, s authstore.Session) {
	if s.User == nil {
		fmt.Fprintln(w, "not logged in")
		return
	}
	name := normalizeText(s.User.Name)
	if name == "" {
		name = "(no name)"
	}
	fmt.Fprintf(w, "%s <%s>\n", name, s.User.Email)
	fmt.Fprintf(w, "id: %s\n", s.User.ID)
	if claims, ok := authstore.Claims(s.Token); ok && claims.ExpiresAt != nil {
		fmt.Fprintf(w, "token expires: %s\n", claims.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	}
}

// normalizeTitle normalizes a todo title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims surrounding space.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
