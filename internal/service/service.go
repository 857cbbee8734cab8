package service

import "context"

// AuthService performs remote login and registration.
// Implementations return an error when the response lacks the expected
// fields; the stores never see a half-filled response as success.
type AuthService interface {
	// Login exchanges credentials for a user and a bearer token.
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)

	// Register creates an account. It does not log the user in.
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
}

// SuggestionService turns free text into canned task suggestions.
type SuggestionService interface {
	// Suggest returns suggestions for input. An empty slice is a valid
	// response; callers decide whether it counts as failure.
	Suggest(ctx context.Context, input string) ([]TodoSuggestion, error)
}

// TodoService is the remote todo CRUD collaborator.
// It is deliberately not used by the todo store's mutation path; only the
// explicit push/pull commands talk to it.
type TodoService interface {
	// ListTodos returns remote todos, filtered by userID when non-empty.
	ListTodos(ctx context.Context, userID string) ([]Todo, error)

	// CreateTodo stores a todo remotely. Reports false when the backend
	// answered with an unexpected status.
	CreateTodo(ctx context.Context, todo Todo) (bool, error)

	// UpdateTodo applies a partial update to a remote todo.
	UpdateTodo(ctx context.Context, id string, upd TodoUpdate) (bool, error)

	// DeleteTodo removes a remote todo.
	DeleteTodo(ctx context.Context, id string) (bool, error)
}
