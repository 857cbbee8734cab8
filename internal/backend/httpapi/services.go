package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"taskpad/internal/service"
)

// AuthService implements service.AuthService.
type AuthService struct {
	c *Client
}

// NewAuthService returns an auth collaborator using c.
func NewAuthService(c *Client) *AuthService { return &AuthService{c: c} }

// Login implements service.AuthService. A response lacking the user or the
// token is an error.
func (a *AuthService) Login(ctx context.Context, req service.LoginRequest) (service.LoginResponse, error) {
	resp := PostPublic[service.LoginResponse](ctx, a.c, "/auth/login", req)
	if resp.Data.User == nil || resp.Data.Token == "" {
		return service.LoginResponse{}, resp.Err("login failed")
	}
	return resp.Data, nil
}

// Register implements service.AuthService. A response lacking the email is
// an error.
func (a *AuthService) Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResponse, error) {
	resp := PostPublic[service.RegisterResponse](ctx, a.c, "/auth/register", req)
	if resp.Data.Email == "" {
		return service.RegisterResponse{}, resp.Err("registration failed")
	}
	return resp.Data, nil
}

// SuggestionsPath is the suggestion endpoint.
const SuggestionsPath = "/api/suggestions"

// SuggestionRequest is the body of a suggestion call.
type SuggestionRequest struct {
	Input string `json:"input"`
}

// SuggestionResponse is the answer of the suggestion endpoint.
type SuggestionResponse struct {
	Success     bool                     `json:"success"`
	Suggestions []service.TodoSuggestion `json:"suggestions"`
	Input       string                   `json:"input,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// SuggestionService implements service.SuggestionService.
type SuggestionService struct {
	c *Client
}

// NewSuggestionService returns a suggestion collaborator using c.
func NewSuggestionService(c *Client) *SuggestionService { return &SuggestionService{c: c} }

// Suggest implements service.SuggestionService.
func (s *SuggestionService) Suggest(ctx context.Context, input string) ([]service.TodoSuggestion, error) {
	var resp SuggestionResponse
	status, err := s.c.send(ctx, s.c.public, http.MethodPost, SuggestionsPath, SuggestionRequest{Input: input}, &resp)
	if err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	if status != http.StatusOK || !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", status)
		}
		return nil, fmt.Errorf("suggestions: %s", msg)
	}
	return resp.Suggestions, nil
}

// TodoService implements service.TodoService. Mutations succeed only on an
// envelope status of exactly 200.
type TodoService struct {
	c *Client
}

// NewTodoService returns a todo collaborator using c.
func NewTodoService(c *Client) *TodoService { return &TodoService{c: c} }

// ListTodos implements service.TodoService.
func (t *TodoService) ListTodos(ctx context.Context, userID string) ([]service.Todo, error) {
	path := "/todos"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}
	resp := Get[[]service.Todo](ctx, t.c, path)
	if !resp.OK() {
		return nil, resp.Err("list todos")
	}
	if resp.Data == nil {
		return []service.Todo{}, nil
	}
	return resp.Data, nil
}

// CreateTodo implements service.TodoService.
func (t *TodoService) CreateTodo(ctx context.Context, todo service.Todo) (bool, error) {
	return result(Post[service.Todo](ctx, t.c, "/todos", todo), "create todo")
}

// UpdateTodo implements service.TodoService.
func (t *TodoService) UpdateTodo(ctx context.Context, id string, upd service.TodoUpdate) (bool, error) {
	return result(Put[service.Todo](ctx, t.c, todoPath(id), upd), "update todo")
}

// DeleteTodo implements service.TodoService.
func (t *TodoService) DeleteTodo(ctx context.Context, id string) (bool, error) {
	return result(Delete[struct{}](ctx, t.c, todoPath(id)), "delete todo")
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(strings.TrimSpace(id))
}

func result[T any](resp Response[T], op string) (bool, error) {
	if resp.OK() {
		return true, nil
	}
	return false, resp.Err(op)
}
