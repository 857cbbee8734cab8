package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"taskpad/internal/storage/sqlitestore"
	"taskpad/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	s, err := sqlitestore.New(filepath.Join(t.TempDir(), "taskpad.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	storagetest.Run(t, s)
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskpad.db")
	ctx := context.Background()

	s, err := sqlitestore.New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "todo-storage", "snapshot"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = sqlitestore.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "todo-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "snapshot" {
		t.Errorf("expected %q, got %q", "snapshot", got)
	}
}
