// Package tui is the interactive todo screen of taskpad.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/service"
	"taskpad/internal/store/todostore"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeSuggestInput
	modeSuggestions
)

// changedMsg reports that the todo store changed outside Update.
type changedMsg struct{}

// suggestionsDoneMsg reports that a suggestion request finished.
type suggestionsDoneMsg struct{ input string }

// Model is the bubbletea model of the todo screen. It renders the todos
// of one user and applies every action to the todo store immediately.
type Model struct {
	ctx   context.Context
	todos *todostore.Store
	user  service.User
	keys  keyMap

	items       []service.Todo
	suggestions []service.TodoSuggestion
	loading     bool

	mode   mode
	cursor int
	pick   int
	input  textinput.Model

	status    string
	statusErr bool
}

// New returns a model showing the todos of user.
func New(ctx context.Context, todos *todostore.Store, user service.User) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:   ctx,
		todos: todos,
		user:  user,
		keys:  defaultKeys(),
		input: ti,
	}
	m.refresh()
	return m
}

// Run shows the todo screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, todos *todostore.Store, user service.User, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, todos, user), opts...)

	// Send must not run on the store goroutine: it blocks until the
	// program reads the message.
	unsubscribe := todos.Subscribe(func(next, prev todostore.State) {
		go p.Send(changedMsg{})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, nil

	case suggestionsDoneMsg:
		m.refresh()
		if len(m.suggestions) == 0 {
			m.setError(fmt.Sprintf("no suggestions for %q", msg.input))
			m.mode = modeBrowse
			return m, nil
		}
		m.status = ""
		m.pick = 0
		m.mode = modeSuggestions
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeSuggestInput:
			return m.updateInput(msg)
		case modeSuggestions:
			return m.updateSuggestions(msg), nil
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.todos.ToggleTodo(t.ID)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.todos.DeleteTodo(t.ID)
			m.refresh()
			m.setStatus("deleted " + t.Title)
		}
	case key.Matches(msg, m.keys.Add):
		return m, m.startInput(modeAdd, "New todo title...")
	case key.Matches(msg, m.keys.Suggest):
		if m.loading {
			return m, nil
		}
		return m, m.startInput(modeSuggestInput, "What do you want to work on?")
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			if m.mode == modeAdd {
				m.setError("title cannot be empty")
			} else {
				m.setError("input cannot be empty")
			}
			return m, nil
		}

		if m.mode == modeAdd {
			m.stopInput()
			m.todos.AddTodo(value, "", m.user.ID)
			m.refresh()
			m.cursor = len(m.items) - 1
			m.setStatus("added " + value)
			return m, nil
		}

		m.stopInput()
		m.loading = true
		m.status = ""
		return m, m.generate(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSuggestions(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.todos.ClearSuggestions()
		m.refresh()
		m.mode = modeBrowse
	case key.Matches(msg, m.keys.Up):
		if m.pick > 0 {
			m.pick--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pick < len(m.suggestions)-1 {
			m.pick++
		}
	case key.Matches(msg, m.keys.Confirm):
		s := m.suggestions[m.pick]
		m.todos.AddSuggestionAsTodo(s, m.user.ID)
		m.refresh()
		m.setStatus("added " + s.Title)
	case key.Matches(msg, m.keys.AddAll):
		for _, s := range m.suggestions {
			m.todos.AddSuggestionAsTodo(s, m.user.ID)
		}
		m.todos.ClearSuggestions()
		n := len(m.suggestions)
		m.refresh()
		m.mode = modeBrowse
		m.setStatus(fmt.Sprintf("added %d todos", n))
	}
	return m
}

// generate asks the store for suggestions off the update loop.
func (m Model) generate(input string) tea.Cmd {
	ctx, todos := m.ctx, m.todos
	return func() tea.Msg {
		todos.GenerateSuggestions(ctx, input)
		return suggestionsDoneMsg{input: input}
	}
}

func (m *Model) startInput(md mode, placeholder string) tea.Cmd {
	m.mode = md
	m.status = ""
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

// refresh reloads the user's todos and the suggestions from the store.
func (m *Model) refresh() {
	st := m.todos.State()
	var items []service.Todo
	for _, t := range st.Todos {
		if t.UserID == m.user.ID {
			items = append(items, t)
		}
	}
	m.items = items
	m.suggestions = st.Suggestions
	m.loading = st.IsSuggestionsLoading

	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.pick >= len(m.suggestions) {
		m.pick = 0
	}
}

func (m Model) selected() (service.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return service.Todo{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}
