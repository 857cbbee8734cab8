package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

func (m Model) View() string {
	var b strings.Builder

	done := 0
	for _, t := range m.items {
		if t.Completed {
			done++
		}
	}
	name := m.user.Name
	if name == "" {
		name = m.user.Email
	}
	fmt.Fprintf(&b, "%s  %s\n\n",
		titleStyle.Render("Todos for "+name),
		mutedStyle.Render(fmt.Sprintf("%d/%d done", done, len(m.items))))

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("  No todos yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, t := range m.items {
		prefix := noCursorSpace
		if i == m.cursor && m.mode == modeBrowse {
			prefix = cursorStyle.Render(cursorMarker)
		}
		box, title := boxUnchecked, t.Title
		if t.Completed {
			box, title = successStyle.Render(boxChecked), doneStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, title)
		if t.Description != "" {
			fmt.Fprintf(&b, "      %s\n", mutedStyle.Render(t.Description))
		}
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd, modeSuggestInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSuggestions:
		b.WriteString(panelStyle.Render(m.suggestionsView()))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(mutedStyle.Render("Generating suggestions..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	bindings := m.keys.browseHelp()
	if m.mode == modeSuggestions {
		bindings = m.keys.suggestionHelp()
	}
	b.WriteString(helpStyle.Render(helpLine(bindings)))
	return b.String()
}

func (m Model) suggestionsView() string {
	lines := []string{titleStyle.Render("Suggestions")}
	for i, s := range m.suggestions {
		prefix := noCursorSpace
		if i == m.pick {
			prefix = cursorStyle.Render(cursorMarker)
		}
		lines = append(lines, prefix+s.Title)
		if s.Description != "" {
			lines = append(lines, "    "+mutedStyle.Render(s.Description))
		}
	}
	return strings.Join(lines, "\n")
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
