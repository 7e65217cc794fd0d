// Package config はtaskctlの設定ファイルを読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// セッションの保存方式。
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config はtaskctlの設定。
type Config struct {
	ServerURL string        `yaml:"server_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Session   SessionConfig `yaml:"session"`
	LogLevel  string        `yaml:"log_level"`
}

// SessionConfig はセッションの保存先設定。
type SessionConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Default は設定ファイルが無い場合の設定を返す。dirはセッションファイルの置き場所。
func Default(dir string) *Config {
	return &Config{
		ServerURL: "http://localhost:8080",
		Timeout:   10 * time.Second,
		Session: SessionConfig{
			Backend: BackendFile,
			Path:    filepath.Join(dir, "session.json"),
		},
		LogLevel: "warn",
	}
}

// DefaultDir は設定・セッションの既定ディレクトリ（$XDG_CONFIG_HOME/taskctl 相当）を返す。
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "taskctl"), nil
}

// Load はpathのYAMLを読み込み、未指定の項目をDefaultで補う。
// ファイルが存在しない場合はDefaultをそのまま返す。
// 環境変数TASKCTL_SERVERが設定されている場合はserver_urlより優先する。
func Load(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("TASKCTL_SERVER"); v != "" {
		cfg.ServerURL = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url must not be empty")
	}
	switch c.Session.Backend {
	case BackendFile, BackendSQLite:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path is required for backend %q", c.Session.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
