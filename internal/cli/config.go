package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL     string `yaml:"server_url,omitempty"`
	SessionCookie string `yaml:"session_cookie,omitempty"`
	Email         string `yaml:"email,omitempty"`
	StorageURL    string `yaml:"storage_url,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sb", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// loadDotEnv reads .env from the working directory, if present. Variables
// already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("loading .env", "error", err)
	}
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("SB_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getSession returns the session cookie from env var or config.
func getSession() string {
	if v := os.Getenv("SB_SESSION"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.SessionCookie
	}
	return ""
}

// getStorageURL returns the base URL image paths are resolved against,
// falling back to the server URL.
func getStorageURL() string {
	if v := os.Getenv("SB_STORAGE_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.StorageURL != "" {
		return cfg.StorageURL
	}
	return getServerURL()
}

// devMode reports whether SB_DEV_MODE enables debug logging.
func devMode() bool {
	v, err := strconv.ParseBool(os.Getenv("SB_DEV_MODE"))
	return err == nil && v
}
