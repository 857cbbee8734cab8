// Package authstore owns the session identity: who is logged in and with
// which bearer token.
//
// The token lives in two places. The token field of the "auth-storage"
// snapshot is canonical. The flat "auth-token" slot, read by the HTTP
// collaborator for bearer headers, is a derived cache: it is rewritten
// whenever a transition changes the token, always removed by Logout, and
// only consulted when the canonical token is missing.
package authstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"taskpad/internal/persist"
	"taskpad/internal/service"
	"taskpad/internal/state"
	"taskpad/internal/storage"
	"taskpad/internal/validate"
)

var errInvalidResponse = errors.New("invalid response from server, please try again")

const (
	// StorageName is the snapshot key of the session.
	StorageName = "auth-storage"

	// TokenKey is the flat slot holding the bearer token.
	TokenKey = "auth-token"
)

// Session is the auth store state.
type Session struct {
	User            *service.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool

	// LastError describes the most recent failed login or registration.
	// Cleared when a new attempt starts; never persisted.
	LastError string
}

// snapshot is the persisted subset of a Session.
type snapshot struct {
	User            *service.User `json:"user,omitempty"`
	Token           string        `json:"token,omitempty"`
	IsAuthenticated bool          `json:"isAuthenticated"`
}

// Options configures a Store.
type Options struct {
	Logger *log.Logger
}

// Store is the auth state container.
type Store struct {
	state   *state.Store[Session]
	persist *persist.Adapter[Session, snapshot]
	storage storage.Storage
	auth    service.AuthService
	logger  *log.Logger
}

// New restores the persisted session from st and returns a ready store.
func New(ctx context.Context, st storage.Storage, auth service.AuthService, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	adapter := persist.New(st, persist.Options[Session, snapshot]{
		Name: StorageName,
		Partialize: func(s Session) snapshot {
			return snapshot{User: s.User, Token: s.Token, IsAuthenticated: s.IsAuthenticated}
		},
		Merge: func(p snapshot, d Session) Session {
			d.User = p.User
			d.Token = p.Token
			d.IsAuthenticated = p.IsAuthenticated && p.User != nil && p.Token != ""
			return d
		},
	}, logger)

	s := &Store{
		state:   state.New(adapter.Restore(ctx, Session{})),
		persist: adapter,
		storage: st,
		auth:    auth,
		logger:  logger,
	}

	if err := s.state.OnListenerPanic(func(r any) {
		logger.Printf("auth listener: panic: %v", r)
	}); err != nil {
		return nil, err
	}
	if _, err := s.state.Subscribe(adapter.Listener()); err != nil {
		return nil, err
	}
	if _, err := s.state.Subscribe(s.syncTokenSlot); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the current session.
func (s *Store) State() Session {
	cur, err := s.state.Get()
	if err != nil {
		s.logger.Printf("auth state: %v", err)
	}
	return cur
}

// Subscribe registers a listener notified after every transition.
func (s *Store) Subscribe(l state.Listener[Session]) func() {
	unsubscribe, err := s.state.Subscribe(l)
	if err != nil {
		s.logger.Printf("auth subscribe: %v", err)
	}
	return unsubscribe
}

// Close stops the store.
func (s *Store) Close() error {
	return s.state.Close()
}

// Login authenticates against the remote service. On success the user and
// token are committed in a single transition and true is returned. On any
// failure the previous identity is left untouched, LastError is set and
// false is returned. IsLoading is reset on every path.
func (s *Store) Login(ctx context.Context, email, password string) (ok bool) {
	s.set(func(cur Session) Session {
		cur.IsLoading = true
		cur.LastError = ""
		return cur
	})

	var resp service.LoginResponse
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("login panicked: %v", r)
			ok = false
		}
		if !ok {
			s.fail(err)
		}
	}()

	resp, err = s.auth.Login(ctx, service.LoginRequest{Email: email, Password: password})
	if err != nil {
		return false
	}
	if resp.User == nil || resp.Token == "" {
		err = errInvalidResponse
		return false
	}

	user := *resp.User
	s.set(func(cur Session) Session {
		cur.User = &user
		cur.Token = resp.Token
		cur.IsAuthenticated = true
		cur.IsLoading = false
		return cur
	})
	return true
}

// Register validates the input locally, then creates the account remotely.
// Invalid input never reaches the remote service. Registration does not
// log the user in.
func (s *Store) Register(ctx context.Context, name, email, password string) (ok bool) {
	s.set(func(cur Session) Session {
		cur.IsLoading = true
		cur.LastError = ""
		return cur
	})

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("registration panicked: %v", r)
			ok = false
		}
		if ok {
			s.set(func(cur Session) Session {
				cur.IsLoading = false
				return cur
			})
			return
		}
		s.fail(err)
	}()

	req := service.RegisterRequest{Name: name, Email: email, Password: password}
	if err = validate.RegisterRequest(req); err != nil {
		return false
	}

	var resp service.RegisterResponse
	resp, err = s.auth.Register(ctx, req)
	if err != nil {
		return false
	}
	if resp.Email == "" {
		err = errInvalidResponse
		return false
	}
	return true
}

// Logout clears the identity and the token slot. It is idempotent.
func (s *Store) Logout() {
	s.set(func(cur Session) Session {
		cur.User = nil
		cur.Token = ""
		cur.IsAuthenticated = false
		return cur
	})
	s.removeSlot()
}

// SetUser injects an authenticated session, e.g. when rehydrating from
// another source. IsAuthenticated becomes true unconditionally. A non-empty
// token replaces the session token and the slot; an empty token keeps the
// current token, or adopts the slot's.
func (s *Store) SetUser(user service.User, token string) {
	if token == "" {
		if cur := s.State(); cur.Token == "" {
			token = s.readSlot()
		}
	}
	s.set(func(cur Session) Session {
		cur.User = &user
		if token != "" {
			cur.Token = token
		}
		cur.IsAuthenticated = true
		return cur
	})
}

// VerifyToken is a local consistency check; it never contacts the server.
// With no token in memory nor in the slot the session is reset as by
// Logout. A slot token is adopted when the session has none.
func (s *Store) VerifyToken() {
	cur := s.State()
	if cur.Token != "" {
		return
	}
	if slot := s.readSlot(); slot != "" {
		s.set(func(cur Session) Session {
			if cur.Token == "" {
				cur.Token = slot
			}
			return cur
		})
		return
	}
	s.Logout()
}

// Authenticated reports whether the session holds a complete identity.
func (s *Store) Authenticated() bool {
	cur := s.State()
	return cur.IsAuthenticated && cur.User != nil && cur.Token != ""
}

func (s *Store) set(fn func(Session) Session) {
	if err := s.state.Set(fn); err != nil {
		s.logger.Printf("auth state: %v", err)
	}
}

func (s *Store) fail(err error) {
	msg := "request failed, please try again"
	if err != nil {
		msg = err.Error()
	}
	s.logger.Printf("auth: %s", msg)
	s.set(func(cur Session) Session {
		cur.IsLoading = false
		cur.LastError = msg
		return cur
	})
}

// syncTokenSlot keeps the slot derived from the canonical token.
func (s *Store) syncTokenSlot(next, prev Session) {
	if next.Token == prev.Token {
		return
	}
	if next.Token == "" {
		s.removeSlot()
		return
	}
	s.writeSlot(next.Token)
}

func (s *Store) readSlot() string {
	v, err := s.storage.Get(context.Background(), TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("read %s: %v", TokenKey, err)
		}
		return ""
	}
	return v
}

func (s *Store) writeSlot(token string) {
	if err := s.storage.Set(context.Background(), TokenKey, token); err != nil {
		s.logger.Printf("write %s: %v", TokenKey, err)
	}
}

func (s *Store) removeSlot() {
	if err := s.storage.Remove(context.Background(), TokenKey); err != nil {
		s.logger.Printf("remove %s: %v", TokenKey, err)
	}
}
