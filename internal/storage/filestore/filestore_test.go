package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"taskpad/internal/storage/filestore"
	"taskpad/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, filestore.New(filepath.Join(t.TempDir(), "state")))
}

func TestStore_FileMode(t *testing.T) {
	s := filestore.New(t.TempDir())
	if err := s.Set(context.Background(), "auth-token", "secret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(s.Path("auth-token"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
}

func TestStore_KeysStayInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New(dir)

	p := s.Path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Errorf("expected %s to live in %s", p, dir)
	}
}
