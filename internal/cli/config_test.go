package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSaveAndLoad(t *testing.T) {
	// Use a temp dir as home
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL:     "http://myhost:9090",
		SessionCookie: "sb_session=abc123",
		Email:         "guest@example.com",
		StorageURL:    "https://cdn.example.com",
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Verify file exists
	path := filepath.Join(tmp, ".config", "sb", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Error("expected zero-value config for missing file")
	}
}

func TestConfigLoadInvalid(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	dir := filepath.Join(tmp, ".config", "sb")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetServerURLFromEnv(t *testing.T) {
	t.Setenv("SB_SERVER_URL", "http://custom:1234")
	t.Setenv("HOME", t.TempDir())

	url := getServerURL()
	if url != "http://custom:1234" {
		t.Errorf("url = %q, want %q", url, "http://custom:1234")
	}
}

func TestGetServerURLDefault(t *testing.T) {
	t.Setenv("SB_SERVER_URL", "")
	t.Setenv("HOME", t.TempDir())

	url := getServerURL()
	if url != defaultServerURL {
		t.Errorf("url = %q, want %q", url, defaultServerURL)
	}
}

func TestGetSessionFromEnv(t *testing.T) {
	t.Setenv("SB_SESSION", "sb_session=env")
	t.Setenv("HOME", t.TempDir())

	if got := getSession(); got != "sb_session=env" {
		t.Errorf("session = %q, want %q", got, "sb_session=env")
	}
}

func TestGetSessionFromConfig(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("SB_SESSION", "")

	if err := saveConfig(CLIConfig{SessionCookie: "sb_session=cfg"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got := getSession(); got != "sb_session=cfg" {
		t.Errorf("session = %q, want %q", got, "sb_session=cfg")
	}
}

func TestGetStorageURLFallsBackToServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SB_STORAGE_URL", "")
	t.Setenv("SB_SERVER_URL", "http://api:8080")

	if got := getStorageURL(); got != "http://api:8080" {
		t.Errorf("storage url = %q", got)
	}

	t.Setenv("SB_STORAGE_URL", "https://cdn.example.com")
	if got := getStorageURL(); got != "https://cdn.example.com" {
		t.Errorf("storage url = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SB_SERVER_URL=http://from-dotenv:7000\nSB_SESSION=sb_session=dot\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	// Already-set variables win over .env.
	t.Setenv("SB_SESSION", "sb_session=shell")
	t.Setenv("SB_SERVER_URL", "")
	os.Unsetenv("SB_SERVER_URL")

	loadDotEnv()

	if got := getServerURL(); got != "http://from-dotenv:7000" {
		t.Errorf("server url = %q", got)
	}
	if got := getSession(); got != "sb_session=shell" {
		t.Errorf("session = %q, want the shell value", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	// Must not panic or exit without a .env file.
	loadDotEnv()
}

func TestDevMode(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{"no", false},
	}
	for _, tt := range tests {
		t.Setenv("SB_DEV_MODE", tt.value)
		if got := devMode(); got != tt.want {
			t.Errorf("devMode() with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}
