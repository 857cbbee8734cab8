package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskpad/internal/service"
)

func (s *Server) handleListTodos(c *gin.Context) {
	caller := c.GetString(userIDKey)
	if q := c.Query("userId"); q != "" && q != caller {
		fail(c, http.StatusForbidden, "cannot list todos of another user")
		return
	}

	s.mu.Lock()
	out := []service.Todo{}
	for _, t := range s.todos {
		if t.UserID == caller {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	envelope(c, http.StatusOK, out, "")
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	var todo service.Todo
	if err := c.ShouldBindJSON(&todo); err != nil || strings.TrimSpace(todo.Title) == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	if todo.CreatedAt == nil {
		now := s.now()
		todo.CreatedAt = &now
	}
	todo.UserID = c.GetString(userIDKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.ID != todo.ID {
			continue
		}
		if t.UserID == todo.UserID {
			fail(c, http.StatusConflict, "todo already exists")
			return
		}
		// Ids of other accounts are not revealed; take a fresh one.
		todo.ID = uuid.NewString()
		break
	}
	s.todos = append(s.todos, todo)
	envelope(c, http.StatusOK, todo, "")
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	var upd service.TodoUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.owned(c.Param("id"), c.GetString(userIDKey))
	if i < 0 {
		fail(c, http.StatusNotFound, "todo not found")
		return
	}

	t := &s.todos[i]
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	now := s.now()
	t.UpdatedAt = &now
	envelope(c, http.StatusOK, *t, "")
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.owned(c.Param("id"), c.GetString(userIDKey))
	if i < 0 {
		fail(c, http.StatusNotFound, "todo not found")
		return
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	envelope[any](c, http.StatusOK, nil, "")
}

// owned returns the index of the todo id owned by userID, or -1.
// Callers hold s.mu.
func (s *Server) owned(id, userID string) int {
	for i, t := range s.todos {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}
