// Package config reads the server and historian settings from the environment.
// A .env file in the working directory is loaded by the entrypoints before Load runs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jason-s-yu/lotpoker/internal/cache"
	"github.com/jason-s-yu/lotpoker/internal/game"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port     string
	LogLevel logrus.Level

	MinPlayers    int
	StartingMoney int
	Seed          int64 // 0 seeds from the clock

	RedisAddr string // empty disables the action log
	RedisDB   int
	QueueName string

	HistorianBatchSize int
	HistorianFlush     time.Duration
	InactivityTimeout  time.Duration

	PGUser     string
	PGPassword string
	PGHost     string // empty disables the results archive
	PGPort     string
	PGDatabase string
}

// Load builds a Config from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		MinPlayers:         getEnvInt("MIN_PLAYERS", 2),
		StartingMoney:      getEnvInt("STARTING_MONEY", 1000),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		QueueName:          getEnv("HISTORIAN_QUEUE_NAME", cache.DefaultQueueName),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		InactivityTimeout:  time.Duration(getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
		PGUser:             os.Getenv("POSTGRES_USER"),
		PGPassword:         os.Getenv("POSTGRES_PASSWORD"),
		PGHost:             os.Getenv("PG_HOST"),
		PGPort:             getEnv("PG_PORT", "5432"),
		PGDatabase:         os.Getenv("PG_DATABASE"),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if s := os.Getenv("GAME_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GAME_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	if err := cfg.HouseRules().Validate(); err != nil {
		return Config{}, fmt.Errorf("house rules: %w", err)
	}
	if cfg.HistorianBatchSize < 1 {
		return Config{}, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", cfg.HistorianBatchSize)
	}
	return cfg, nil
}

// HouseRules returns the default rules with the configured overrides.
func (c Config) HouseRules() game.HouseRules {
	rules := game.DefaultHouseRules()
	rules.MinPlayers = c.MinPlayers
	rules.StartingMoney = c.StartingMoney
	return rules
}

// PostgresURL returns the pgx connection string, or "" when PG_HOST is unset.
func (c Config) PostgresURL() string {
	if c.PGHost == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PGUser, c.PGPassword),
		Host:   c.PGHost + ":" + c.PGPort,
		Path:   "/" + c.PGDatabase,
	}
	return u.String()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
