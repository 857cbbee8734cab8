// Package googletasks implements service.TodoService on the user's default
// Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"taskpad/internal/config"
	"taskpad/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.TodoService using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	listID string
}

// OAuthConfig reads the OAuth client credentials from the config dir.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and google_token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("not connected to Google Tasks (run: taskpad connect): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithOptions(ctx, option.WithHTTPClient(httpClient))
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	return NewWithOptions(ctx, option.WithHTTPClient(httpClient))
}

// NewWithOptions creates a client from raw API options, e.g. a test
// endpoint.
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: DefaultListID}, nil
}

// ListTodos returns every task of the default list, completed ones
// included, in API order. Google Tasks has no notion of taskpad users, so
// all tasks are attributed to userID.
func (c *Client) ListTodos(ctx context.Context, userID string) ([]service.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	result := []service.Todo{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				result = append(result, toTodo(task, userID))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTodo inserts todo as a new task.
func (c *Client) CreateTodo(ctx context.Context, todo service.Todo) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	task := &tasks.Task{
		Title:  todo.Title,
		Notes:  todo.Description,
		Status: status(todo.Completed),
	}
	if _, err := c.svc.Tasks.Insert(c.listID, task).Context(ctx).Do(); err != nil {
		return false, wrapError(err)
	}
	return true, nil
}

// UpdateTodo patches the set fields of upd onto task id.
func (c *Client) UpdateTodo(ctx context.Context, id string, upd service.TodoUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{}
	if upd.Title != nil {
		patch.Title = *upd.Title
	}
	if upd.Description != nil {
		patch.Notes = *upd.Description
		if patch.Notes == "" {
			patch.NullFields = append(patch.NullFields, "Notes")
		}
	}
	if upd.Completed != nil {
		patch.Status = status(*upd.Completed)
		if !*upd.Completed {
			patch.NullFields = append(patch.NullFields, "Completed")
		}
	}

	if _, err := c.svc.Tasks.Patch(c.listID, id, patch).Context(ctx).Do(); err != nil {
		return false, wrapError(err)
	}
	return true, nil
}

// DeleteTodo deletes task id.
func (c *Client) DeleteTodo(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return false, wrapError(err)
	}
	return true, nil
}

func toTodo(task *tasks.Task, userID string) service.Todo {
	todo := service.Todo{
		ID:          task.Id,
		Title:       task.Title,
		Description: task.Notes,
		Completed:   task.Status == statusCompleted,
		UserID:      userID,
	}
	if t, err := time.Parse(time.RFC3339, task.Updated); err == nil {
		todo.UpdatedAt = &t
	}
	return todo
}

func status(completed bool) string {
	if completed {
		return statusCompleted
	}
	return statusNeedsAction
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("google token expired or revoked (run: taskpad connect)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}

	return err
}
