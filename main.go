package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cfbot/internal/bot"
	"cfbot/internal/config"
	"cfbot/internal/database"
	"cfbot/internal/handler"
	"cfbot/internal/service"
	"cfbot/internal/session"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("=== cfbot — Cloudflare DNS bot ===", zap.String("version", version))

	store, err := database.Open(cfg.Database.DSN, cfg.Database.Dir)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	if cfg.Telegram.AdminID != 0 {
		logger.Info("Admin commands enabled", zap.Int64("admin", cfg.Telegram.AdminID))
	}

	transport := bot.NewTransport(api)
	controller := handler.New(
		session.NewMemoryStore(),
		service.NewCloudflareProvider(),
		service.NewNetProber(cfg.Probe.Timeout()),
		store,
		transport,
		logger,
		cfg.Records,
		cfg.Telegram.AdminID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot.New(api, controller, logger).Run(ctx)
	logger.Info("Bot stopped")
}
