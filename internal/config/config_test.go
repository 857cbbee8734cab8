package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.Storage != StorageFile || cfg.Remote != RemoteHTTP {
		t.Errorf("unexpected backends %q/%q", cfg.Storage, cfg.Remote)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Timeout)
	}
	if !cfg.EnforcePrivate {
		t.Error("expected enforce_private default true")
	}
	if cfg.SQLitePath != filepath.Join(dir, "taskpad.db") {
		t.Errorf("unexpected sqlite path %q", cfg.SQLitePath)
	}
}

func TestNew_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "base_url: http://api.example.com\nstorage: sqlite\ntimeout: 5s\nenforce_private: false\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKPAD_BASE_URL", "http://env.example.com")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.BaseURL != "http://env.example.com" {
		t.Errorf("expected env override, got %q", cfg.BaseURL)
	}
	if cfg.Storage != StorageSQLite || cfg.Timeout != 5*time.Second || cfg.EnforcePrivate {
		t.Errorf("unexpected settings: %+v", cfg.Settings)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"storage", "storage: floppy\n", "invalid storage"},
		{"remote", "remote: carrier-pigeon\n", "invalid remote"},
		{"redis without addr", "storage: redis\n", "redis_addr"},
		{"malformed", "storage: [\n", "config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(tt.yaml), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := New(dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{Dir: "/cfg"}

	if cfg.OAuthClientPath() != "/cfg/oauth_client.json" {
		t.Errorf("unexpected oauth client path %q", cfg.OAuthClientPath())
	}
	if cfg.GoogleTokenPath() != "/cfg/google_token.json" {
		t.Errorf("unexpected token path %q", cfg.GoogleTokenPath())
	}
	if cfg.StatePath() != "/cfg/state" {
		t.Errorf("unexpected state path %q", cfg.StatePath())
	}
}

func TestSettingsYAML(t *testing.T) {
	s := Settings{BaseURL: "http://x", Storage: StorageMemory, Remote: RemoteHTTP, Timeout: 90 * time.Second}

	out, err := s.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	got := string(out)
	for _, want := range []string{"base_url: http://x", "storage: memory", "timeout: 1m30s", "enforce_private: false"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "redis_addr") {
		t.Errorf("empty redis_addr should be omitted:\n%s", got)
	}
}
