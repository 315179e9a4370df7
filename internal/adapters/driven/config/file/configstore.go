// Package file loads and persists the engine's configuration as a TOML
// file in the user's config directory.
package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// fileConfig is the on-disk TOML shape.
type fileConfig struct {
	ClientID    string   `toml:"client_id"`
	RedirectURI string   `toml:"redirect_uri"`
	Scopes      []string `toml:"scopes,omitempty"`
	AuthURL     string   `toml:"auth_url,omitempty"`
	TokenURL    string   `toml:"token_url,omitempty"`
	RevokeURL   string   `toml:"revoke_url,omitempty"`
}

// ConfigStore reads and writes the TOML configuration file.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	cfg  fileConfig
}

// NewConfigStore creates a config store at path. An empty path
// defaults to the XDG config dir (journal-calendar/config.toml).
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		var err error
		path, err = xdg.ConfigFile(filepath.Join("journal-calendar", "config.toml"))
		if err != nil {
			return nil, err
		}
	}

	s := &ConfigStore{path: path}
	if err := s.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// Load re-reads the file from disk.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// Save writes the given configuration to disk and keeps it in memory.
func (s *ConfigStore) Save(cfg domain.OAuthConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = fileConfig{
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
		Scopes:      cfg.Scopes,
		AuthURL:     cfg.AuthURL,
		TokenURL:    cfg.TokenURL,
		RevokeURL:   cfg.RevokeURL,
	}

	raw, err := toml.Marshal(s.cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0600)
}

// OAuthConfig returns the current configuration.
func (s *ConfigStore) OAuthConfig() domain.OAuthConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.OAuthConfig{
		ClientID:    s.cfg.ClientID,
		RedirectURI: s.cfg.RedirectURI,
		Scopes:      s.cfg.Scopes,
		AuthURL:     s.cfg.AuthURL,
		TokenURL:    s.cfg.TokenURL,
		RevokeURL:   s.cfg.RevokeURL,
	}
}
