// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	SettingsPath    string
	SettingsRefresh time.Duration
	KVBackend       string
	KVFilePath      string
	DatabaseURL     string
	CurrencyLabel   string
	Locale          string
	LogLevel        string
	LogFormat       string
}

// Load reads .env (outside production) and then the environment. A missing
// .env file is not an error.
func Load() (Config, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:           getEnv("ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		SettingsPath:  getEnv("SETTINGS_PATH", "data/settings.yaml"),
		KVBackend:     getEnv("KV_BACKEND", "memory"),
		KVFilePath:    getEnv("KV_FILE_PATH", "data/db/kv.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CurrencyLabel: getEnv("CURRENCY_LABEL", "ر.س"),
		Locale:        getEnv("LOCALE", "ar"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}

	refresh, err := time.ParseDuration(getEnv("SETTINGS_REFRESH", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SETTINGS_REFRESH: %w", err)
	}
	if refresh <= 0 {
		return Config{}, fmt.Errorf("invalid SETTINGS_REFRESH %s: must be positive", refresh)
	}
	cfg.SettingsRefresh = refresh

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	return cfg, nil
}

func (c Config) Addr() string { return ":" + c.Port }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
