// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskpad/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeAuthService is an in-memory implementation of service.AuthService.
type FakeAuthService struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount // email -> account
	tokens   int

	// Response overrides for testing. When set they are returned as-is.
	LoginResponse    *service.LoginResponse
	RegisterResponse *service.RegisterResponse

	// Error injection for testing
	LoginErr    error
	RegisterErr error

	// Block, when non-nil, is waited on before answering.
	Block chan struct{}

	LoginCalls    int
	RegisterCalls int
}

type fakeAccount struct {
	user     service.User
	password string
}

// NewFakeAuthService creates a FakeAuthService with no accounts.
func NewFakeAuthService() *FakeAuthService {
	return &FakeAuthService{accounts: make(map[string]fakeAccount)}
}

// AddAccount registers an account that Login accepts.
func (f *FakeAuthService) AddAccount(id, name, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: id, Name: name, Email: email}
	f.accounts[email] = fakeAccount{user: u, password: password}
	return u
}

// Calls returns the total number of remote calls made.
func (f *FakeAuthService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginCalls + f.RegisterCalls
}

// Login implements service.AuthService.
func (f *FakeAuthService) Login(ctx context.Context, req service.LoginRequest) (service.LoginResponse, error) {
	f.mu.Lock()
	f.LoginCalls++
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return service.LoginResponse{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LoginErr != nil {
		return service.LoginResponse{}, f.LoginErr
	}
	if f.LoginResponse != nil {
		return *f.LoginResponse, nil
	}

	acct, ok := f.accounts[req.Email]
	if !ok || acct.password != req.Password {
		return service.LoginResponse{}, errors.New("login failed, please try again")
	}
	f.tokens++
	u := acct.user
	return service.LoginResponse{User: &u, Token: fakeToken(f.tokens)}, nil
}

// Register implements service.AuthService.
func (f *FakeAuthService) Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++

	if f.RegisterErr != nil {
		return service.RegisterResponse{}, f.RegisterErr
	}
	if f.RegisterResponse != nil {
		return *f.RegisterResponse, nil
	}
	if _, exists := f.accounts[req.Email]; exists {
		return service.RegisterResponse{}, errors.New("account already exists")
	}

	id := fmt.Sprintf("u%d", len(f.accounts)+1)
	f.accounts[req.Email] = fakeAccount{
		user:     service.User{ID: id, Name: req.Name, Email: req.Email},
		password: req.Password,
	}
	return service.RegisterResponse{Email: req.Email}, nil
}

func fakeToken(n int) string {
	return fmt.Sprintf("token-%d", n)
}
