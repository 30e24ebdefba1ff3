// Package config handles configuration for monachat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/diogo/monachat/internal/models"
)

// Storage backends
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Environment overrides
const (
	EnvBackendURL = "MONACHAT_BACKEND_URL"
	EnvDataDir    = "MONACHAT_DATA_DIR"
	EnvStorage    = "MONACHAT_STORAGE"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", "dracula", ...
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	BackendURL string `json:"backend_url"`
	// DataDir holds the persisted timelines and contact settings.
	DataDir string `json:"data_dir,omitempty"`
	// Storage selects the persistence backend: "file" or "sqlite".
	Storage string `json:"storage"`
	// ThinkTimeMinMS and ThinkTimeMaxMS bound the randomized minimum
	// duration of a reply. It is cosmetic pacing, not a retry policy.
	ThinkTimeMinMS        int  `json:"think_time_min_ms"`
	ThinkTimeMaxMS        int  `json:"think_time_max_ms"`
	RequestTimeoutSeconds int  `json:"request_timeout_seconds"`
	// SerializeSends makes replies on one contact resolve in send order.
	SerializeSends  bool           `json:"serialize_sends"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	Verbose         bool           `json:"verbose"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:            models.DefaultBackendURL,
		Storage:               StorageFile,
		ThinkTimeMinMS:        800,
		ThinkTimeMaxMS:        2000,
		RequestTimeoutSeconds: 30,
		SerializeSends:        true,
		CopyToClipboard:       false,
		Verbose:               false,
		Markdown:              DefaultMarkdownConfig(),
	}
}

// ThinkTime returns the think-time window as durations
func (c Config) ThinkTime() (time.Duration, time.Duration) {
	lo := time.Duration(c.ThinkTimeMinMS) * time.Millisecond
	hi := time.Duration(c.ThinkTimeMaxMS) * time.Millisecond
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// RequestTimeout returns the reply request timeout
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".monachat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetDataDir returns the data directory from config, creating it if necessary
func GetDataDir(cfg Config) (string, error) {
	dir := cfg.DataDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "data")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides. Values in the file are overlaid onto the defaults.
func LoadConfig() (Config, error) {
	cfg, err := ReadConfigFile()
	return ApplyEnv(cfg), err
}

// ReadConfigFile loads the configuration file without environment
// overrides. A missing file yields the defaults; a malformed one yields the
// defaults and an error.
func ReadConfigFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not an error; existing variables are never overwritten.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with MONACHAT_* environment variables
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage = v
	}
	return cfg
}

// AvailableStorages returns the supported persistence backends
func AvailableStorages() []string {
	return []string{StorageFile, StorageSQLite}
}
