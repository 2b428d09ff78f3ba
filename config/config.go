package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	StorageType      string
	LocalStoragePath string
	DataSourceName   string
	DatabaseURL      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CartStorageKey string
	CartTTL        time.Duration
	CurrencySymbol string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to read .env file")
	}
	return FromEnv()
}

func FromEnv() (cfg Config, err error) {
	cfg = Config{
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		StorageType:      getenv("STORAGE_TYPE", "memory"),
		LocalStoragePath: getenv("LOCAL_STORAGE_PATH", "./data"),
		DataSourceName:   getenv("DATA_SOURCE_NAME", "guestcart.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CartStorageKey:   getenv("CART_STORAGE_KEY", "guest_cart"),
		CurrencySymbol:   getenv("CURRENCY_SYMBOL", "$"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.RedisDB, err = strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("REDIS_DB: %w", err)
		}
	}
	if v := os.Getenv("CART_TTL"); v != "" {
		cfg.CartTTL, err = time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("CART_TTL: %w", err)
		}
		if cfg.CartTTL < 0 {
			return cfg, fmt.Errorf("CART_TTL: must not be negative")
		}
	}
	if _, err = logrus.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
