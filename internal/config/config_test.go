package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
botToken: "123:abc"
botUsername: "kitob_bot"
adminIDs: [111, 222]
channels:
  - name: "One"
    url: "https://t.me/one"
    chatID: -1001
  - name: "Two"
    url: "https://t.me/two"
    chatID: -1002
promoChannel: "https://t.me/one"
databaseURL: "postgres://localhost/kitobbot"
booksDir: "data/books"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Fatalf("maxFileSize default = %d", cfg.MaxFileSize)
	}
	if cfg.StorageBackend != StorageLocal {
		t.Fatalf("storageBackend default = %q", cfg.StorageBackend)
	}
	if cfg.LogLevel != "info" || cfg.HealthPort != "8080" {
		t.Fatalf("unexpected defaults: level=%q port=%q", cfg.LogLevel, cfg.HealthPort)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0].ChatID != -1001 {
		t.Fatalf("channels not parsed: %+v", cfg.Channels)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:xyz")
	t.Setenv("ADMIN_IDS", "5, 6,7")
	t.Setenv("CHANNEL2_ID", "-2002")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BotToken != "999:xyz" {
		t.Fatalf("BOT_TOKEN override ignored: %q", cfg.BotToken)
	}
	if len(cfg.AdminIDs) != 3 || cfg.AdminIDs[2] != 7 {
		t.Fatalf("ADMIN_IDS override ignored: %v", cfg.AdminIDs)
	}
	if cfg.Channels[1].ChatID != -2002 {
		t.Fatalf("CHANNEL2_ID override ignored: %d", cfg.Channels[1].ChatID)
	}
	if cfg.MaxFileSize != 1024 {
		t.Fatalf("MAX_FILE_SIZE override ignored: %d", cfg.MaxFileSize)
	}
	if cfg.RateLimitPerMinute != 0 {
		t.Fatalf("RATE_LIMIT_ENABLED=false should disable the limiter, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadRejectsMissingToken(t *testing.T) {
	yaml := `
adminIDs: [1]
channels:
  - name: "One"
    url: "https://t.me/one"
    chatID: -1001
databaseURL: "postgres://localhost/kitobbot"
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatalf("expected validation error for missing botToken")
	}
}

func TestLoadRejectsChannelWithoutChatID(t *testing.T) {
	yaml := `
botToken: "123:abc"
adminIDs: [1]
channels:
  - name: "One"
    url: "https://t.me/one"
databaseURL: "postgres://localhost/kitobbot"
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatalf("expected validation error for channel without chatID")
	}
}

func TestLoadRejectsUnknownStorageBackend(t *testing.T) {
	if _, err := Load(writeConfig(t, testYAML+"\nstorageBackend: tape\n")); err == nil {
		t.Fatalf("expected validation error for unknown storage backend")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for explicitly named missing config")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := FileConfig{AdminIDs: []int64{10, 20}}
	if !cfg.IsAdmin(10) || cfg.IsAdmin(30) {
		t.Fatalf("allow-list check broken")
	}
}
