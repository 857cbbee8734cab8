// Package storagetest holds behaviour checks shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"taskpad/internal/storage"
)

// Run exercises the storage.Storage contract against s.
func Run(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		if _, err := s.Get(ctx, "absent"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		value := `{"state":{"todos":[]},"version":0}`
		if err := s.Set(ctx, "todo-storage", value); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := s.Get(ctx, "todo-storage")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != value {
			t.Errorf("expected %q, got %q", value, got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Set(ctx, "auth-token", "one"); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := s.Set(ctx, "auth-token", "two"); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := s.Get(ctx, "auth-token")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != "two" {
			t.Errorf("expected %q, got %q", "two", got)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		if err := s.Set(ctx, "gone", "x"); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := s.Remove(ctx, "gone"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if err := s.Remove(ctx, "gone"); err != nil {
			t.Fatalf("second remove: %v", err)
		}
		if _, err := s.Get(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after remove, got %v", err)
		}
	})
}
