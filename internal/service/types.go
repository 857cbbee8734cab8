// Package service defines the collaborator interfaces and the shared types
// that flow between the stores and their backends.
package service

import "time"

// DefaultUserID is the owner assigned to todos created without a user id.
const DefaultUserID = "default"

// User is an authenticated identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Todo represents a single todo item.
// Every todo belongs to exactly one user id; one collection may hold
// todos of several users.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"` // "" means absent
	Completed   bool       `json:"completed"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UserID      string     `json:"userId"`
}

// Clone returns a copy of t that shares no timestamps with it.
func (t Todo) Clone() Todo {
	if t.CreatedAt != nil {
		created := *t.CreatedAt
		t.CreatedAt = &created
	}
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		t.UpdatedAt = &updated
	}
	return t
}

// Updated reports whether the todo was modified after it was created.
func (t Todo) Updated() bool {
	if t.CreatedAt == nil || t.UpdatedAt == nil {
		return false
	}
	return t.UpdatedAt.After(*t.CreatedAt)
}

// TodoUpdate is a partial todo. Nil fields are left untouched.
type TodoUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TodoSuggestion is a canned task proposal. It is never persisted.
type TodoSuggestion struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LoginRequest is the payload of a login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the result of a login call. Both fields must be present
// for the login to count as successful.
type LoginResponse struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// RegisterRequest is the payload of a registration call.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the result of a registration call.
type RegisterResponse struct {
	Email string `json:"email,omitempty"`
}
