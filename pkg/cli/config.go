package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/session"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

// Config is the contents of config.yaml.
type Config struct {
	Host           string `yaml:"host"`
	PageSize       int    `yaml:"page_size"`
	KeyringService string `yaml:"keyring_service"`
	// EncryptionKey encrypts the stored session. It must be exactly 32
	// bytes; a random one is generated when the file is created.
	EncryptionKey string `yaml:"encryption_key"`
	// Database is the drafts database, relative to the config directory
	// unless absolute.
	Database string `yaml:"database"`

	dir string
}

// DefaultConfig returns a configuration with a fresh encryption key.
func DefaultConfig() (*Config, error) {
	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	return &Config{
		PageSize:       api.DefaultPageSize,
		KeyringService: "botflow",
		EncryptionKey:  key,
		Database:       "drafts.db",
	}, nil
}

// randomKey returns 32 hex characters, which is a 32-byte AES-256 key.
func randomKey() (string, error) {
	b := make([]byte, session.KeySize/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// LoadConfig reads config.yaml from dir, creating it with defaults when
// missing. Missing fields are filled from the defaults but the file is
// not rewritten.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err := DefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg.dir = dir
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.dir = dir

	def := &Config{PageSize: api.DefaultPageSize, KeyringService: "botflow", Database: "drafts.db"}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.KeyringService == "" {
		cfg.KeyringService = def.KeyringService
	}
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if len(cfg.EncryptionKey) != session.KeySize {
		return nil, fmt.Errorf("config: encryption_key must be %d characters, got %d", session.KeySize, len(cfg.EncryptionKey))
	}
	return cfg, nil
}

// Save writes the configuration back to its directory.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(c.dir, configFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DatabasePath resolves the drafts database location.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.dir, c.Database)
}
