package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AuctionConfig holds the auction engine tunables. All values have
// defaults and can be overridden through the environment.
type AuctionConfig struct {
	DefaultDuration    time.Duration // standard/foreclosure auctions
	EmergencyDuration  time.Duration // emergency auctions run shorter
	AntiSnipeThreshold time.Duration // a bid inside this window extends the auction
	AntiSnipeExtension time.Duration // by this much
	SweepInterval      time.Duration // recovery sweep period
	BotIncrement       float64       // fixed bot bid increment
}

func DefaultAuctionConfig() AuctionConfig {
	return AuctionConfig{
		DefaultDuration:    120 * time.Second,
		EmergencyDuration:  60 * time.Second,
		AntiSnipeThreshold: 30 * time.Second,
		AntiSnipeExtension: 10 * time.Second,
		SweepInterval:      60 * time.Second,
		BotIncrement:       10,
	}
}

// LoadAuctionConfig reads overrides from the environment (seconds).
func LoadAuctionConfig() AuctionConfig {
	cfg := DefaultAuctionConfig()
	cfg.DefaultDuration = envSeconds("AUCTION_DEFAULT_DURATION_SEC", cfg.DefaultDuration)
	cfg.EmergencyDuration = envSeconds("AUCTION_EMERGENCY_DURATION_SEC", cfg.EmergencyDuration)
	cfg.AntiSnipeThreshold = envSeconds("AUCTION_ANTI_SNIPE_THRESHOLD_SEC", cfg.AntiSnipeThreshold)
	cfg.AntiSnipeExtension = envSeconds("AUCTION_ANTI_SNIPE_EXTENSION_SEC", cfg.AntiSnipeExtension)
	cfg.SweepInterval = envSeconds("AUCTION_SWEEP_INTERVAL_SEC", cfg.SweepInterval)
	if v := os.Getenv("AUCTION_BOT_INCREMENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.BotIncrement = f
		}
	}
	return cfg
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[CONFIG] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return time.Duration(n) * time.Second
}

// InitEnv loads .env and validates required vars.
func InitEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}
}
