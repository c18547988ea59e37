package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kitobbot/internal/bot"
	"kitobbot/internal/config"
	"kitobbot/internal/health"
	"kitobbot/internal/ratelimit"
	"kitobbot/internal/storage"
	"kitobbot/internal/store"
	"kitobbot/internal/subscription"
	"kitobbot/internal/util"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFile)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	files, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("open file storage: %w", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.RateLimitPerMinute > 0 {
		limiter, err = ratelimit.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			return fmt.Errorf("init rate limiter: %w", err)
		}
		slog.Info("rate limiting enabled", "per_minute", cfg.RateLimitPerMinute)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("authorized on telegram", "username", api.Self.UserName)

	channels := make([]subscription.Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		channels = append(channels, subscription.Channel{
			Name:   ch.Name,
			URL:    ch.URL,
			ChatID: ch.ChatID,
		})
	}

	b := bot.New(api, st, files, limiter, bot.Config{
		Token:        cfg.BotToken,
		AdminIDs:     cfg.AdminIDs,
		Channels:     channels,
		PromoChannel: cfg.PromoChannel,
		MaxFileSize:  cfg.MaxFileSize,
	})
	healthSrv := health.New(cfg.HealthPort, st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthSrv.Run(ctx) })
	g.Go(func() error { return b.Run(ctx) })

	slog.Info("kitobbot started", "health_port", cfg.HealthPort, "storage", cfg.StorageBackend)
	return g.Wait()
}

func newBlobStore(cfg config.FileConfig) (storage.BlobStore, error) {
	if cfg.StorageBackend == config.StorageMinio {
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return storage.NewFileStore(cfg.BooksDir)
}
