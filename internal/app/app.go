// Package app wires configuration, storage, collaborators and the two
// stores into one value that commands receive.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"taskpad/internal/backend/googletasks"
	"taskpad/internal/backend/httpapi"
	"taskpad/internal/config"
	"taskpad/internal/service"
	"taskpad/internal/storage"
	"taskpad/internal/storage/filestore"
	"taskpad/internal/storage/memstore"
	"taskpad/internal/storage/redisstore"
	"taskpad/internal/storage/sqlitestore"
	"taskpad/internal/store/authstore"
	"taskpad/internal/store/todostore"
)

// Services are the collaborators of an App. Nil fields are built from
// configuration.
type Services struct {
	Auth        service.AuthService
	Suggestions service.SuggestionService
	Todos       service.TodoService
}

// App is the composition root of a taskpad process.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Storage storage.Storage
	Auth    *authstore.Store
	Todos   *todostore.Store

	remote service.TodoService
}

// NewLogger returns the process logger: "debug: " lines on w when debug is
// set, nothing otherwise.
func NewLogger(debug bool, w io.Writer) *log.Logger {
	if !debug {
		w = io.Discard
	}
	return log.New(w, "debug: ", 0)
}

// OpenStorage opens the storage backend named by cfg.
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memstore.New(), nil
	case config.StorageRedis:
		return redisstore.New(ctx, cfg.RedisAddr)
	case config.StorageSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
		return sqlitestore.New(cfg.SQLitePath)
	case config.StorageFile, "":
		return filestore.New(cfg.StatePath()), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// New opens the configured storage and builds an App talking to the HTTP
// API.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	st, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := Assemble(ctx, cfg, st, Services{}, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// Assemble builds an App on st. The stores are restored from st before
// Assemble returns.
func Assemble(ctx context.Context, cfg *config.Config, st storage.Storage, svcs Services, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(false, nil)
	}

	client := httpapi.New(httpapi.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Tokens:  httpapi.NewSlotTokenSource(st, authstore.TokenKey),
		Logger:  logger,
	})
	if svcs.Auth == nil {
		svcs.Auth = httpapi.NewAuthService(client)
	}
	if svcs.Suggestions == nil {
		svcs.Suggestions = httpapi.NewSuggestionService(client)
	}
	if svcs.Todos == nil && cfg.Remote != config.RemoteGoogleTasks {
		svcs.Todos = httpapi.NewTodoService(client)
	}

	auth, err := authstore.New(ctx, st, svcs.Auth, authstore.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("auth store: %w", err)
	}
	todos, err := todostore.New(ctx, st, svcs.Suggestions, todostore.Options{Logger: logger})
	if err != nil {
		auth.Close()
		return nil, fmt.Errorf("todo store: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Storage: st,
		Auth:    auth,
		Todos:   todos,
		remote:  svcs.Todos,
	}, nil
}

// Remote returns the remote todo collaborator. The Google Tasks backend is
// connected on first use.
func (a *App) Remote(ctx context.Context) (service.TodoService, error) {
	if a.remote != nil {
		return a.remote, nil
	}
	c, err := googletasks.New(ctx, a.Config)
	if err != nil {
		return nil, err
	}
	a.remote = c
	return c, nil
}

// UserID returns the id of the logged-in user, or "" when there is none.
func (a *App) UserID() string {
	if s := a.Auth.State(); s.User != nil {
		return s.User.ID
	}
	return ""
}

// Close stops both stores and closes the storage.
func (a *App) Close() error {
	return errors.Join(a.Auth.Close(), a.Todos.Close(), a.Storage.Close())
}
