// Package config handles the XDG configuration directory, file paths and
// the optional config.yaml settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskpad"

	// ConfigFile is the optional settings file.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"

	// StateDir holds the file storage backend.
	StateDir = "state"

	// EnvPrefix prefixes environment overrides, e.g. TASKPAD_BASE_URL.
	EnvPrefix = "TASKPAD"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Remote todo backends.
const (
	RemoteHTTP        = "http"
	RemoteGoogleTasks = "googletasks"
)

// Settings are the user-tunable values of config.yaml.
type Settings struct {
	BaseURL        string        `mapstructure:"base_url"`
	Storage        string        `mapstructure:"storage"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	Remote         string        `mapstructure:"remote"`
	Timeout        time.Duration `mapstructure:"timeout"`
	EnforcePrivate bool          `mapstructure:"enforce_private"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a new Config with the default or specified config directory
// and loads its settings. If configDir is empty, uses
// XDG_CONFIG_HOME/taskpad or $HOME/.config/taskpad. A missing config.yaml
// is not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetConfigFile(c.ConfigPath())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("storage", StorageFile)
	v.SetDefault("redis_addr", "")
	v.SetDefault("sqlite_path", filepath.Join(c.Dir, "taskpad.db"))
	v.SetDefault("remote", RemoteHTTP)
	v.SetDefault("timeout", "30s")
	v.SetDefault("enforce_private", true)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", ConfigFile, err)
	}
	if err := v.Unmarshal(&c.Settings); err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return c.Settings.validate()
}

func (s Settings) validate() error {
	switch s.Storage {
	case StorageFile, StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage %q (want file, memory, redis or sqlite)", s.Storage)
	}
	switch s.Remote {
	case RemoteHTTP, RemoteGoogleTasks:
	default:
		return fmt.Errorf("invalid remote %q (want http or googletasks)", s.Remote)
	}
	if s.Storage == StorageRedis && s.RedisAddr == "" {
		return errors.New("storage redis requires redis_addr")
	}
	if s.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", s.Timeout)
	}
	return nil
}

// YAML renders the effective settings.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(struct {
		BaseURL        string `yaml:"base_url"`
		Storage        string `yaml:"storage"`
		RedisAddr      string `yaml:"redis_addr,omitempty"`
		SQLitePath     string `yaml:"sqlite_path"`
		Remote         string `yaml:"remote"`
		Timeout        string `yaml:"timeout"`
		EnforcePrivate bool   `yaml:"enforce_private"`
	}{
		BaseURL:        s.BaseURL,
		Storage:        s.Storage,
		RedisAddr:      s.RedisAddr,
		SQLitePath:     s.SQLitePath,
		Remote:         s.Remote,
		Timeout:        s.Timeout.String(),
		EnforcePrivate: s.EnforcePrivate,
	})
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// StatePath returns the directory of the file storage backend.
func (c *Config) StatePath() string {
	return filepath.Join(c.Dir, StateDir)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}

// RemoveGoogleToken deletes the Google token file.
func (c *Config) RemoveGoogleToken() error {
	return os.Remove(c.GoogleTokenPath())
}
