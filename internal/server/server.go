// Package server is the taskpad development server: the suggestion API,
// an in-memory auth and todo API for local use, and the gated pages.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/internal/gate"
	"taskpad/internal/service"
	"taskpad/internal/suggest"
)

// DefaultDelay is the artificial latency of the suggestion endpoint.
const DefaultDelay = time.Second

// Options configures a Server.
type Options struct {
	// Delay is applied to every suggestion request.
	Delay time.Duration

	Gate gate.Gate

	// Secret signs session tokens. A random secret is generated when
	// empty.
	Secret []byte

	// TokenTTL is the lifetime of issued tokens. Defaults to 24h.
	TokenTTL time.Duration

	Now    func() time.Time
	Logger *log.Logger
}

// Server is the development server.
type Server struct {
	router   *gin.Engine
	opts     Options
	suggest  suggest.Generator
	logger   *log.Logger
	now      func() time.Time
	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	accounts map[string]account // by email
	todos    []service.Todo
}

type account struct {
	user service.User
	hash []byte
}

// New creates a server with all routes registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	s := &Server{
		router:   gin.New(),
		opts:     opts,
		suggest:  suggest.Generator{Now: now},
		logger:   logger,
		now:      now,
		secret:   opts.Secret,
		tokenTTL: ttl,
		accounts: make(map[string]account),
	}
	if len(s.secret) == 0 {
		s.secret = randomSecret()
	}

	s.router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	// Pages
	pages := s.router.Group("", opts.Gate.Middleware())
	{
		pages.GET("/", s.handlePage("taskpad"))
		pages.GET(gate.LoginPath, s.handlePage("login"))
		pages.GET(gate.RegisterPath, s.handlePage("register"))
		pages.GET(gate.DashboardPath, s.handlePage("dashboard"))
	}

	// Suggestion API
	api := s.router.Group("/api")
	{
		api.GET("/suggestions", s.handleSuggestionsInfo)
		api.POST("/suggestions", s.handleSuggestions)
	}

	// Auth API
	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/register", s.handleRegister)
	}

	// Todo API
	todos := s.router.Group("/todos", s.requireToken)
	{
		todos.GET("", s.handleListTodos)
		todos.POST("", s.handleCreateTodo)
		todos.PUT("/:id", s.handleUpdateTodo)
		todos.DELETE("/:id", s.handleDeleteTodo)
	}

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled or the listener
// fails. Cancellation shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "taskpad: %s\n", name)
	}
}
