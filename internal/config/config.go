// Package config holds device-level settings: server URL, API key, device id
// and feature overrides. Stored at ~/.config/fieldsync/config.json; env vars
// take precedence over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Config is the on-disk device configuration.
type Config struct {
	ServerURL string          `json:"server_url,omitempty"`
	APIKey    string          `json:"api_key,omitempty"`
	DeviceID  string          `json:"device_id,omitempty"`
	Features  map[string]bool `json:"features,omitempty"`
}

const defaultServerURL = "http://localhost:8080"

// ConfigDir returns ~/.config/fieldsync, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "fieldsync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// DataDir returns the base directory for the local database.
// FIELDSYNC_BASE_DIR overrides the ~/.fieldsync default.
func DataDir() (string, error) {
	if dir := os.Getenv("FIELDSYNC_BASE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".fieldsync"), nil
}

// EndpointPolicyPath returns the path of the optional cacheable-endpoint
// policy file.
func EndpointPolicyPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "endpoints.yaml"), nil
}

// Load reads the config file; a missing file yields an empty config.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config atomically (temp file + rename).
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// ServerURL returns the effective server URL.
// Precedence: FIELDSYNC_SERVER_URL, config file, built-in default.
func ServerURL() string {
	if url := os.Getenv("FIELDSYNC_SERVER_URL"); url != "" {
		return url
	}
	if cfg, err := Load(); err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// APIKey returns the effective API key, empty when unauthenticated.
func APIKey() string {
	if key := os.Getenv("FIELDSYNC_API_KEY"); key != "" {
		return key
	}
	if cfg, err := Load(); err == nil {
		return cfg.APIKey
	}
	return ""
}

// DeviceID returns the stable device identifier, assigning and persisting
// one on first use.
func DeviceID() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.DeviceID != "" {
		return cfg.DeviceID, nil
	}

	cfg.DeviceID = uuid.NewString()
	if err := Save(cfg); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return cfg.DeviceID, nil
}
