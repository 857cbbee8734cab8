// Package todostore holds the todo collection and the transient suggestion
// list. Every mutation is applied locally and immediately; none of them
// waits for or calls a remote service.
package todostore

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskpad/internal/persist"
	"taskpad/internal/service"
	"taskpad/internal/state"
	"taskpad/internal/storage"
)

// StorageName is the snapshot key of the todo collection.
const StorageName = "todo-storage"

// State is the todo store state.
type State struct {
	// Todos is kept in insertion order and may hold todos of several users.
	Todos     []service.Todo
	IsLoading bool

	Suggestions          []service.TodoSuggestion
	IsSuggestionsLoading bool
}

type snapshot struct {
	Todos []service.Todo `json:"todos"`
}

// Options configures a Store.
type Options struct {
	Logger *log.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// NewID returns a fresh todo id. Defaults to a UUIDv7 string.
	NewID func() string
}

// Store is the todo state container.
type Store struct {
	state   *state.Store[State]
	suggest service.SuggestionService
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// New restores the persisted todos from st and returns a ready store.
func New(ctx context.Context, st storage.Storage, suggest service.SuggestionService, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = newTodoID
	}

	adapter := persist.New(st, persist.Options[State, snapshot]{
		Name: StorageName,
		Partialize: func(s State) snapshot {
			return snapshot{Todos: s.Todos}
		},
		Merge: func(p snapshot, d State) State {
			d.Todos = p.Todos
			return d
		},
	}, logger)

	s := &Store{
		state:   state.New(adapter.Restore(ctx, State{})),
		suggest: suggest,
		logger:  logger,
		now:     now,
		newID:   newID,
	}
	if err := s.state.OnListenerPanic(func(r any) {
		logger.Printf("todo listener: panic: %v", r)
	}); err != nil {
		return nil, err
	}
	if _, err := s.state.Subscribe(adapter.Listener()); err != nil {
		return nil, err
	}
	return s, nil
}

func newTodoID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns the current state.
func (s *Store) State() State {
	cur, err := s.state.Get()
	if err != nil {
		s.logger.Printf("todo state: %v", err)
	}
	if cur.Todos != nil {
		todos := make([]service.Todo, len(cur.Todos))
		for i, t := range cur.Todos {
			todos[i] = t.Clone()
		}
		cur.Todos = todos
	}
	if cur.Suggestions != nil {
		cur.Suggestions = append([]service.TodoSuggestion(nil), cur.Suggestions...)
	}
	return cur
}

// Subscribe registers a listener notified after every transition.
func (s *Store) Subscribe(l state.Listener[State]) func() {
	unsubscribe, err := s.state.Subscribe(l)
	if err != nil {
		s.logger.Printf("todo subscribe: %v", err)
	}
	return unsubscribe
}

// Close stops the store.
func (s *Store) Close() error {
	return s.state.Close()
}

// AddTodo appends a new, uncompleted todo and returns it. An empty userID
// assigns the todo to service.DefaultUserID. The title is not validated.
func (s *Store) AddTodo(title, description, userID string) service.Todo {
	if userID == "" {
		userID = service.DefaultUserID
	}
	created := s.now()
	todo := service.Todo{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		CreatedAt:   &created,
		UserID:      userID,
	}
	s.set(func(cur State) State {
		cur.Todos = append(cloneTodos(cur.Todos, 1), todo)
		return cur
	})
	return todo
}

// UpdateTodo merges upd onto the todo with the given id and stamps
// UpdatedAt. Unknown ids are ignored.
func (s *Store) UpdateTodo(id string, upd service.TodoUpdate) {
	s.modify(id, func(t *service.Todo) {
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Completed != nil {
			t.Completed = *upd.Completed
		}
	})
}

// ToggleTodo flips the completed flag of a todo. Unknown ids are ignored.
func (s *Store) ToggleTodo(id string) {
	s.modify(id, func(t *service.Todo) {
		t.Completed = !t.Completed
	})
}

// DeleteTodo removes a todo. Unknown ids are ignored.
func (s *Store) DeleteTodo(id string) {
	s.set(func(cur State) State {
		i := indexOf(cur.Todos, id)
		if i < 0 {
			return cur
		}
		next := make([]service.Todo, 0, len(cur.Todos)-1)
		next = append(next, cur.Todos[:i]...)
		cur.Todos = append(next, cur.Todos[i+1:]...)
		return cur
	})
}

// GetTodosByUser returns copies of the todos owned by userID in collection
// order.
func (s *Store) GetTodosByUser(userID string) []service.Todo {
	out := []service.Todo{}
	for _, t := range s.State().Todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// Todo returns a copy of the todo with the given id.
func (s *Store) Todo(id string) (service.Todo, bool) {
	todos := s.State().Todos
	if i := indexOf(todos, id); i >= 0 {
		return todos[i], true
	}
	return service.Todo{}, false
}

// ClearTodos empties the whole collection, for every user.
func (s *Store) ClearTodos() {
	s.set(func(cur State) State {
		cur.Todos = nil
		return cur
	})
}

// ImportTodos appends the todos whose ids are not yet present, in order,
// and returns how many were added. Todos without an owner are assigned
// to userID.
func (s *Store) ImportTodos(todos []service.Todo, userID string) int {
	if userID == "" {
		userID = service.DefaultUserID
	}
	added := 0
	s.set(func(cur State) State {
		seen := make(map[string]bool, len(cur.Todos))
		for _, t := range cur.Todos {
			seen[t.ID] = true
		}
		next := cloneTodos(cur.Todos, len(todos))
		for _, t := range todos {
			if t.ID == "" || seen[t.ID] {
				continue
			}
			if t.UserID == "" {
				t.UserID = userID
			}
			seen[t.ID] = true
			next = append(next, t)
			added++
		}
		cur.Todos = next
		return cur
	})
	return added
}

// GenerateSuggestions replaces the suggestion list with proposals for
// input. Blank input clears the list without calling the suggestion
// service. An error or an empty answer also clears it.
func (s *Store) GenerateSuggestions(ctx context.Context, input string) {
	if strings.TrimSpace(input) == "" {
		s.ClearSuggestions()
		return
	}

	s.set(func(cur State) State {
		cur.IsSuggestionsLoading = true
		return cur
	})

	var suggestions []service.TodoSuggestion
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("suggestions: panic: %v", r)
			suggestions = nil
		}
		s.set(func(cur State) State {
			cur.Suggestions = suggestions
			cur.IsSuggestionsLoading = false
			return cur
		})
	}()

	got, err := s.suggest.Suggest(ctx, input)
	if err != nil {
		s.logger.Printf("suggestions: %v", err)
		return
	}
	if len(got) == 0 {
		s.logger.Printf("suggestions: no suggestions for %q", input)
		return
	}
	suggestions = append([]service.TodoSuggestion(nil), got...)
}

// AddSuggestionAsTodo creates a todo from a suggestion. The suggestion
// stays in the list.
func (s *Store) AddSuggestionAsTodo(suggestion service.TodoSuggestion, userID string) service.Todo {
	return s.AddTodo(suggestion.Title, suggestion.Description, userID)
}

// ClearSuggestions empties the suggestion list.
func (s *Store) ClearSuggestions() {
	s.set(func(cur State) State {
		cur.Suggestions = nil
		return cur
	})
}

func (s *Store) modify(id string, fn func(*service.Todo)) {
	updated := s.now()
	s.set(func(cur State) State {
		i := indexOf(cur.Todos, id)
		if i < 0 {
			return cur
		}
		next := cloneTodos(cur.Todos, 0)
		fn(&next[i])
		next[i].UpdatedAt = &updated
		cur.Todos = next
		return cur
	})
}

func (s *Store) set(fn func(State) State) {
	if err := s.state.Set(fn); err != nil {
		s.logger.Printf("todo state: %v", err)
	}
}

func indexOf(todos []service.Todo, id string) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// cloneTodos copies todos into a new slice with room for extra more.
func cloneTodos(todos []service.Todo, extra int) []service.Todo {
	out := make([]service.Todo, len(todos), len(todos)+extra)
	copy(out, todos)
	return out
}
