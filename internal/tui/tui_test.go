package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad/internal/service"
	"taskpad/internal/storage/memstore"
	"taskpad/internal/store/todostore"
	"taskpad/internal/testutil"
)

var ann = service.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}

func newTestModel(t *testing.T, suggest *testutil.FakeSuggestionService) (Model, *todostore.Store) {
	t.Helper()
	if suggest == nil {
		suggest = &testutil.FakeSuggestionService{}
	}
	store, err := todostore.New(context.Background(), memstore.New(), suggest, todostore.Options{})
	if err != nil {
		t.Fatalf("todostore.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(context.Background(), store, ann), store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to m and runs the returned commands until none is left,
// the way the program loop would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		msg = nil
		if cmd != nil {
			msg = cmd()
			if _, ok := msg.(tea.QuitMsg); ok {
				return m
			}
			switch msg.(type) {
			case changedMsg, suggestionsDoneMsg:
			default:
				msg = nil
			}
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = send(t, m, runes(string(r)))
	}
	return m
}

func TestAddTodo(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = send(t, m, runes("a"))
	if m.mode != modeAdd {
		t.Fatalf("expected add mode, got %v", m.mode)
	}
	m = typeText(t, m, "Buy milk")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Errorf("expected browse mode after enter, got %v", m.mode)
	}
	todos := store.GetTodosByUser(ann.ID)
	if len(todos) != 1 || todos[0].Title != "Buy milk" {
		t.Fatalf("expected one todo 'Buy milk', got %+v", todos)
	}
	if !strings.Contains(m.View(), "[ ] Buy milk") {
		t.Errorf("view should list the new todo:\n%s", m.View())
	}
}

func TestAddTodo_EmptyTitle(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = send(t, m, runes("a"))
	m = typeText(t, m, "   ")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeAdd {
		t.Errorf("expected to stay in add mode, got %v", m.mode)
	}
	if len(store.State().Todos) != 0 {
		t.Errorf("expected no todos, got %d", len(store.State().Todos))
	}
	if !strings.Contains(m.View(), "title cannot be empty") {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestAddTodo_Cancel(t *testing.T) {
	m, store := newTestModel(t, nil)

	m = send(t, m, runes("a"))
	m = typeText(t, m, "q")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeBrowse {
		t.Errorf("expected browse mode, got %v", m.mode)
	}
	if len(store.State().Todos) != 0 {
		t.Errorf("cancel should not add a todo")
	}
}

func TestToggleAndDelete(t *testing.T) {
	m, store := newTestModel(t, nil)
	first := store.AddTodo("First", "", ann.ID)
	second := store.AddTodo("Second", "", ann.ID)
	store.AddTodo("Not mine", "", "u2")
	m = send(t, m, changedMsg{})

	if len(m.items) != 2 {
		t.Fatalf("expected 2 items for the user, got %d", len(m.items))
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got, _ := store.Todo(second.ID); !got.Completed {
		t.Errorf("expected second todo completed")
	}
	if got, _ := store.Todo(first.ID); got.Completed {
		t.Errorf("first todo should be untouched")
	}

	m = send(t, m, runes("d"))
	if _, ok := store.Todo(second.ID); ok {
		t.Errorf("expected second todo deleted")
	}
	if m.cursor != 0 {
		t.Errorf("cursor should clamp to 0, got %d", m.cursor)
	}
	if len(store.State().Todos) != 2 {
		t.Errorf("other user's todo must survive, got %d todos", len(store.State().Todos))
	}
}

func TestCursorBounds(t *testing.T) {
	m, store := newTestModel(t, nil)
	store.AddTodo("One", "", ann.ID)
	m = send(t, m, changedMsg{})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = send(t, m, runes("j"))
	m = send(t, m, runes("j"))
	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}
}

func TestSuggestions(t *testing.T) {
	fake := &testutil.FakeSuggestionService{Suggestions: []service.TodoSuggestion{
		{ID: "1", Title: "Research Go", Description: "Read docs"},
		{ID: "2", Title: "Practice Go"},
	}}
	m, store := newTestModel(t, fake)

	m = send(t, m, runes("s"))
	m = typeText(t, m, "Go")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeSuggestions {
		t.Fatalf("expected suggestions mode, got %v", m.mode)
	}
	if !strings.Contains(m.View(), "Research Go") {
		t.Errorf("view should show suggestions:\n%s", m.View())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	todos := store.GetTodosByUser(ann.ID)
	if len(todos) != 1 || todos[0].Title != "Practice Go" {
		t.Fatalf("expected 'Practice Go' added, got %+v", todos)
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeBrowse {
		t.Errorf("expected browse mode, got %v", m.mode)
	}
	if len(store.State().Suggestions) != 0 {
		t.Errorf("esc should clear suggestions")
	}
}

func TestSuggestions_AddAll(t *testing.T) {
	fake := &testutil.FakeSuggestionService{Suggestions: []service.TodoSuggestion{
		{ID: "1", Title: "A"}, {ID: "2", Title: "B"}, {ID: "3", Title: "C"},
	}}
	m, store := newTestModel(t, fake)

	m = send(t, m, runes("s"))
	m = typeText(t, m, "x")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, runes("A"))

	if got := len(store.GetTodosByUser(ann.ID)); got != 3 {
		t.Errorf("expected 3 todos, got %d", got)
	}
	if !strings.Contains(m.View(), "added 3 todos") {
		t.Errorf("view should report the count:\n%s", m.View())
	}
}

func TestSuggestions_Failure(t *testing.T) {
	m, store := newTestModel(t, &testutil.FakeSuggestionService{Err: errors.New("down")})

	m = send(t, m, runes("s"))
	m = typeText(t, m, "Go")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Errorf("expected browse mode, got %v", m.mode)
	}
	if m.loading || store.State().IsSuggestionsLoading {
		t.Errorf("loading should be reset")
	}
	if !strings.Contains(m.View(), `no suggestions for "Go"`) {
		t.Errorf("view should show the failure:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestView_Empty(t *testing.T) {
	m, _ := newTestModel(t, nil)
	v := m.View()
	if !strings.Contains(v, "Todos for Ann") || !strings.Contains(v, "No todos yet") {
		t.Errorf("unexpected view:\n%s", v)
	}
}
