package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// DefaultMaxFileSize caps uploads at 50 MB.
const DefaultMaxFileSize int64 = 52428800

// Storage backend selectors.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Channel is a required subscription channel as configured.
type Channel struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	ChatID int64  `yaml:"chatID"`
}

// FileConfig represents configuration loaded from YAML with env overrides.
type FileConfig struct {
	BotToken           string    `yaml:"botToken"`
	BotUsername        string    `yaml:"botUsername"`
	AdminIDs           []int64   `yaml:"adminIDs"`
	Channels           []Channel `yaml:"channels"`
	PromoChannel       string    `yaml:"promoChannel"`
	DatabaseURL        string    `yaml:"databaseURL"`
	StorageBackend     string    `yaml:"storageBackend"`
	BooksDir           string    `yaml:"booksDir"`
	MinioEndpoint      string    `yaml:"minioEndpoint"`
	MinioAccessKey     string    `yaml:"minioAccessKey"`
	MinioSecretKey     string    `yaml:"minioSecretKey"`
	MinioBucket        string    `yaml:"minioBucket"`
	MinioUseSSL        bool      `yaml:"minioUseSSL"`
	RedisAddr          string    `yaml:"redisAddr"`
	RedisPassword      string    `yaml:"redisPassword"`
	RateLimitPerMinute int       `yaml:"rateLimitPerMinute"`
	MaxFileSize        int64     `yaml:"maxFileSize"`
	LogLevel           string    `yaml:"logLevel"`
	LogFile            string    `yaml:"logFile"`
	HealthPort         string    `yaml:"healthPort"`
}

// IsAdmin reports whether the user is on the operator allow-list.
func (c FileConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load reads config from path (defaults to config.yaml), applies defaults
// and environment overrides, then validates. A missing default config file
// is fine; env-only operation is supported.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := path != ""
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		// env-only operation
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StorageLocal
	}
	if cfg.BooksDir == "" {
		cfg.BooksDir = "data/books"
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HealthPort == "" {
		cfg.HealthPort = "8080"
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 20
	}
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOT_USERNAME"); v != "" {
		cfg.BotUsername = strings.TrimSpace(v)
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		if ids, err := splitInt64CSV(v); err == nil {
			cfg.AdminIDs = ids
		}
	}
	for i := range cfg.Channels {
		if v := os.Getenv(fmt.Sprintf("CHANNEL%d_ID", i+1)); v != "" {
			if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				cfg.Channels[i].ChatID = id
			}
		}
	}
	if v := os.Getenv("PROMO_CHANNEL"); v != "" {
		cfg.PromoChannel = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKS_DIR"); v != "" {
		cfg.BooksDir = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil && !enabled {
			cfg.RateLimitPerMinute = 0
		}
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxFileSize = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.HealthPort = strings.TrimSpace(v)
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.BotToken == "" {
		return errors.New("config: botToken is required (set in config.yaml or BOT_TOKEN)")
	}
	if len(cfg.AdminIDs) == 0 {
		return errors.New("config: adminIDs is required (set in config.yaml or ADMIN_IDS)")
	}
	if len(cfg.Channels) == 0 {
		return errors.New("config: at least one required channel must be configured")
	}
	for i, ch := range cfg.Channels {
		if ch.ChatID == 0 {
			return fmt.Errorf("config: channel %d has no chatID (set in config.yaml or CHANNEL%d_ID)", i+1, i+1)
		}
		if ch.URL == "" {
			return fmt.Errorf("config: channel %d has no url", i+1)
		}
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	switch cfg.StorageBackend {
	case StorageLocal:
		if cfg.BooksDir == "" {
			return errors.New("config: booksDir is required for local storage")
		}
	case StorageMinio:
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return errors.New("config: minio storage requires endpoint, access key, secret key and bucket")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", cfg.StorageBackend)
	}
	if cfg.MaxFileSize <= 0 {
		return errors.New("config: maxFileSize must be > 0")
	}
	if cfg.RateLimitPerMinute < 0 {
		return errors.New("config: rateLimitPerMinute must be >= 0")
	}
	return nil
}

func splitInt64CSV(value string) ([]int64, error) {
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}
