// Package config reads and writes the global ~/.chattrix/config.toml.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Transport selects how an open thread is kept current.
const (
	TransportPoll     = "poll"
	TransportRealtime = "realtime"
)

// Config holds the backend coordinates and client tuning knobs.
type Config struct {
	Endpoint         string `toml:"endpoint"`
	Project          string `toml:"project"`
	DatabaseID       string `toml:"database_id"`
	UserCollectionID string `toml:"user_collection_id"`
	ChatCollectionID string `toml:"chat_collection_id"`
	AvatarBucketID   string `toml:"avatar_bucket_id"`
	PollIntervalMS   int    `toml:"poll_interval_ms"`
	Transport        string `toml:"transport"`
}

// Default returns the config used when no file exists yet.
func Default() *Config {
	return &Config{
		Endpoint:       "https://cloud.appwrite.io/v1",
		PollIntervalMS: 2000,
		Transport:      TransportPoll,
	}
}

// Load reads config from the given path. Returns an error if the file is
// missing; callers fall back to Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// PollInterval returns the configured poll cadence, defaulting to 2s.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
