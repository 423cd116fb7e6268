// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	TelegramToken string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	CoinGeckoBaseURL      string
	CoinGeckoAPIKey       string
	CoinGeckoRateLimitMin int
	HTTPTimeout           time.Duration

	PriceCacheTTL     time.Duration
	TokenInfoCacheTTL time.Duration

	TickersFile string

	LogLevel  string
	LogFormat string
}

// Defaults returns the configuration used when no variable is set.
func Defaults() Config {
	return Config{
		HTTPAddr:              ":8080",
		OpenAIModel:           "gpt-4.1-mini",
		CoinGeckoBaseURL:      "https://api.coingecko.com/api/v3",
		CoinGeckoRateLimitMin: 30,
		HTTPTimeout:           10 * time.Second,
		PriceCacheTTL:         time.Minute,
		TokenInfoCacheTTL:     5 * time.Minute,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// Load reads the .env file at envFile (if present) and then the process
// environment. A missing .env file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	d := Defaults()
	cfg := Config{
		HTTPAddr:         get("HTTP_ADDR", d.HTTPAddr),
		TelegramToken:    get("TELEGRAM_BOT_TOKEN", ""),
		OpenAIAPIKey:     get("OPENAI_API_SECRET_KEY", ""),
		OpenAIModel:      get("OPENAI_MODEL", d.OpenAIModel),
		OpenAIBaseURL:    get("OPENAI_BASE_URL", ""),
		CoinGeckoBaseURL: get("COINGECKO_BASE_URL", d.CoinGeckoBaseURL),
		CoinGeckoAPIKey:  get("COINGECKO_API_KEY", ""),
		TickersFile:      get("TICKERS_FILE", ""),
		LogLevel:         get("LOG_LEVEL", d.LogLevel),
		LogFormat:        get("LOG_FORMAT", d.LogFormat),
	}

	var err error
	if cfg.CoinGeckoRateLimitMin, err = getInt("COINGECKO_RATE_LIMIT_PER_MIN", d.CoinGeckoRateLimitMin); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", d.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PriceCacheTTL, err = getDuration("PRICE_CACHE_TTL", d.PriceCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.TokenInfoCacheTTL, err = getDuration("TOKEN_INFO_CACHE_TTL", d.TokenInfoCacheTTL); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would make a component unusable.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if c.CoinGeckoBaseURL == "" {
		return errors.New("COINGECKO_BASE_URL must not be empty")
	}
	if c.CoinGeckoRateLimitMin <= 0 {
		return fmt.Errorf("COINGECKO_RATE_LIMIT_PER_MIN must be positive, got %d", c.CoinGeckoRateLimitMin)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.PriceCacheTTL <= 0 {
		return fmt.Errorf("PRICE_CACHE_TTL must be positive, got %s", c.PriceCacheTTL)
	}
	if c.TokenInfoCacheTTL <= 0 {
		return fmt.Errorf("TOKEN_INFO_CACHE_TTL must be positive, got %s", c.TokenInfoCacheTTL)
	}
	return nil
}

func get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}
