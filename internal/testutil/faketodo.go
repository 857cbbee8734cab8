package testutil

import (
	"context"
	"fmt"
	"sync"

	"taskpad/internal/service"
)

// FakeTodoService is an in-memory implementation of service.TodoService.
type FakeTodoService struct {
	mu    sync.RWMutex
	todos []service.Todo
	next  int

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// Reject makes mutating calls report false without an error, like a
	// backend answering with an unexpected status code.
	Reject bool
}

// NewFakeTodoService creates an empty FakeTodoService.
func NewFakeTodoService() *FakeTodoService {
	return &FakeTodoService{}
}

// AddTodo seeds a remote todo and returns it.
func (f *FakeTodoService) AddTodo(userID, title, description string, completed bool) service.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t := service.Todo{
		ID:          fmt.Sprintf("remote-%d", f.next),
		Title:       title,
		Description: description,
		Completed:   completed,
		UserID:      userID,
	}
	f.todos = append(f.todos, t)
	return t
}

// Todos returns a copy of the remote collection.
func (f *FakeTodoService) Todos() []service.Todo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Todo, len(f.todos))
	copy(out, f.todos)
	return out
}

// ListTodos implements service.TodoService.
func (f *FakeTodoService) ListTodos(ctx context.Context, userID string) ([]service.Todo, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []service.Todo
	for _, t := range f.todos {
		if userID == "" || t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTodo implements service.TodoService.
func (f *FakeTodoService) CreateTodo(ctx context.Context, todo service.Todo) (bool, error) {
	if f.CreateErr != nil {
		return false, f.CreateErr
	}
	if f.Reject {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todos = append(f.todos, todo)
	return true, nil
}

// UpdateTodo implements service.TodoService.
func (f *FakeTodoService) UpdateTodo(ctx context.Context, id string, upd service.TodoUpdate) (bool, error) {
	if f.UpdateErr != nil {
		return false, f.UpdateErr
	}
	if f.Reject {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.todos {
		if t.ID != id {
			continue
		}
		if upd.Title != nil {
			f.todos[i].Title = *upd.Title
		}
		if upd.Description != nil {
			f.todos[i].Description = *upd.Description
		}
		if upd.Completed != nil {
			f.todos[i].Completed = *upd.Completed
		}
		return true, nil
	}
	return false, ErrNotFound
}

// DeleteTodo implements service.TodoService.
func (f *FakeTodoService) DeleteTodo(ctx context.Context, id string) (bool, error) {
	if f.DeleteErr != nil {
		return false, f.DeleteErr
	}
	if f.Reject {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.todos {
		if t.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return true, nil
		}
	}
	return false, ErrNotFound
}
