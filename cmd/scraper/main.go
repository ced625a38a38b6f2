package main

import (
	"context"
	"log"
	"os"

	"github.com/anton-sementsov/parser-upw/internal/config"
	"github.com/anton-sementsov/parser-upw/internal/database"
	"github.com/anton-sementsov/parser-upw/internal/scraper"
	"github.com/anton-sementsov/parser-upw/internal/telegram"
)

func main() {
	cfg := config.Load()
	log.Printf("🔧 Config loaded. Search pages: %d, banned terms: %d", len(cfg.SearchPages), len(cfg.BannedCountries))

	ctx := context.Background()

	repo, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer func() {
		log.Println("Closing connection to database")
		repo.Close()
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure schema: %v", err)
	}

	var notifier scraper.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Failed to init Telegram bot, notifications disabled: %v", err)
		} else {
			log.Println("🤖 Telegram bot initialized")
			notifier = bot
		}
	} else {
		log.Println("Telegram credentials not configured; notifications disabled")
	}

	// The single non-retried failure path: anything escaping the cycle body
	// is logged once here, the database is closed by the defer above, and
	// the process terminates.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Fatal error escaped the scrape loop: %v", r)
			repo.Close()
			os.Exit(1)
		}
	}()

	log.Println("🚀 Starting Upwork scraper")
	runner := scraper.NewRunner(cfg, repo, notifier)
	runner.Run(ctx)
}
