package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file looked up when --config is not given.
const DefaultPath = ".evalforge.yml"

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Workers   int    `yaml:"workers"`
	DBPath    string `yaml:"db_path"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"` // literal or "env:VAR_NAME"
	MaxTokens int    `yaml:"max_tokens"`

	// Optional local Chat Completions proxy started around a run
	Proxy *ProxyConfig `yaml:"proxy,omitempty"`
}

// ProxyConfig controls the built-in Responses API → Chat Completions proxy.
type ProxyConfig struct {
	Enabled bool                    `yaml:"enabled"`
	Listen  string                  `yaml:"listen,omitempty"` // default ":4000"
	Targets map[string]*ProxyTarget `yaml:"targets"`
}

// ProxyTarget describes an upstream Chat Completions endpoint.
type ProxyTarget struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"` // literal or "env:VAR_NAME"
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}

// ResolveAPIKey returns the configured API key, expanding "env:VAR"
// references. When the config carries no key, OPENROUTER_API_KEY is
// tried as a fallback.
func (s *Settings) ResolveAPIKey() (string, error) {
	key, err := ResolveSecret(s.APIKey)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = os.Getenv("OPENROUTER_API_KEY")
	}
	if key == "" {
		return "", fmt.Errorf("no API key: set api_key in the config or export OPENROUTER_API_KEY")
	}
	return key, nil
}

// ResolveSecret expands a literal-or-"env:VAR" value.
func ResolveSecret(v string) (string, error) {
	if !strings.HasPrefix(v, "env:") {
		return v, nil
	}
	name := strings.TrimPrefix(v, "env:")
	val := os.Getenv(name)
	if val == "" {
		return "", fmt.Errorf("env var %q is not set", name)
	}
	return val, nil
}

// ResolveDBPath returns the configured results database path or the
// default under .evalforge/.
func (s *Settings) ResolveDBPath() string {
	if s.DBPath != "" {
		return s.DBPath
	}
	return filepath.Join(".evalforge", "results.db")
}
