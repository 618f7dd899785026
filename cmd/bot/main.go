package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JulierBo/codeshop-bot/internal/config"
	"github.com/JulierBo/codeshop-bot/internal/ledger"
	"github.com/JulierBo/codeshop-bot/internal/notifier"
	"github.com/JulierBo/codeshop-bot/internal/store"
	"github.com/JulierBo/codeshop-bot/internal/telegram"
)

func main() {
	// Setup logger
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	// Load config
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Error("BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.AdminID == 0 {
		log.Error("ADMIN_ID is required")
		os.Exit(1)
	}

	// Initialize store
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error("init store", "error", err)
		os.Exit(1)
	}
	if c, ok := st.(*store.SQLiteStore); ok {
		defer c.Close()
	}
	log.Info("store initialized", "path", cfg.StorePath)

	// Initialize ledger
	ldg, err := ledger.New(st, cfg.AdminID, log)
	if err != nil {
		log.Error("init ledger", "error", err)
		os.Exit(1)
	}

	// Initialize telegram bot
	bot, err := telegram.New(cfg, ldg, log)
	if err != nil {
		log.Error("init telegram bot", "error", err)
		os.Exit(1)
	}
	log.Info("telegram bot initialized")

	// Initialize notifier
	bot.UseNotifier(notifier.New(cfg, bot, log))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	// Start bot polling
	log.Info("starting bot polling...")
	bot.Start(ctx)
}
