package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Telegram
	BotToken string
	AdminID  int64

	// Storage
	StorePath string

	// Display
	Currency string
}

func Load() *Config {
	return &Config{
		// Telegram
		BotToken: getEnv("BOT_TOKEN", ""),
		AdminID:  getEnvInt64("ADMIN_ID", 0),

		// Storage
		StorePath: getEnv("STORE_PATH", "./store.json"),

		// Display
		Currency: getEnv("CURRENCY", "MMK"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
