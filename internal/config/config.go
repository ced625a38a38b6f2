// Package config loads .env and YAML configuration with env overrides,
// defaults and fail-fast validation of the values the scraper cannot run
// without. Secrets come from the environment, tunables from the YAML file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Secrets, environment only.
	DatabaseURL    string `yaml:"-"`
	Username       string `yaml:"-"`
	Password       string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`

	// Browser launch.
	BrowserChannels   []string `yaml:"browser_channels"`
	MaxLaunchAttempts int      `yaml:"max_launch_attempts"`
	CookiesPath       string   `yaml:"cookies_path"`

	// Cycle tuning.
	VerificationPauseSeconds int      `yaml:"verification_pause_seconds"`
	ScrapeIntervalMinutes    int      `yaml:"scrape_interval_minutes"`
	BannedCountries          []string `yaml:"banned_countries"`
	SearchPages              []string `yaml:"search_pages"`
}

func (c *Config) VerificationPause() time.Duration {
	return time.Duration(c.VerificationPauseSeconds) * time.Second
}

func (c *Config) ScrapeInterval() time.Duration {
	return time.Duration(c.ScrapeIntervalMinutes) * time.Minute
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Username = os.Getenv("UPWORK_USERNAME")
	cfg.Password = os.Getenv("UPWORK_PASSWORD")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	cfg.applyDefaults()

	// Telegram stays optional: absence disables notifications silently.
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		log.Fatal("UPWORK_USERNAME and UPWORK_PASSWORD are required")
	}

	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.BrowserChannels) == 0 {
		c.BrowserChannels = []string{"chrome", "chrome-beta", "msedge"}
	}
	if c.MaxLaunchAttempts <= 0 {
		c.MaxLaunchAttempts = 3
	}
	if c.VerificationPauseSeconds <= 0 {
		c.VerificationPauseSeconds = 60
	}
	if c.ScrapeIntervalMinutes <= 0 {
		c.ScrapeIntervalMinutes = 60
	}
}
