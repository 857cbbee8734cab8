package httpapi

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"taskpad/internal/storage"
)

// ErrNoToken is returned by authorised calls when no bearer token is
// stored.
var ErrNoToken = errors.New("not logged in")

// SlotTokenSource reads the bearer token from a storage slot on every
// call, so a login or logout is seen by the next request.
type SlotTokenSource struct {
	storage storage.Storage
	key     string
}

// NewSlotTokenSource returns a token source reading key from st.
func NewSlotTokenSource(st storage.Storage, key string) *SlotTokenSource {
	return &SlotTokenSource{storage: st, key: key}
}

// Token implements oauth2.TokenSource.
func (s *SlotTokenSource) Token() (*oauth2.Token, error) {
	v, err := s.storage.Get(context.Background(), s.key)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && v == "") {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
}
