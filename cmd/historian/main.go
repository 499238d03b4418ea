// cmd/historian/main.go is an asynchronous historian service that pops game
// actions from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/lotpoker/internal/cache"
	"github.com/jason-s-yu/lotpoker/internal/config"
	"github.com/jason-s-yu/lotpoker/internal/database"
	"github.com/jason-s-yu/lotpoker/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if cfg.RedisAddr == "" || cfg.PostgresURL() == "" {
		logger.Fatal("historian needs REDIS_ADDR and PG_HOST")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer rdb.Close()

	store, err := database.ConnectDB(ctx, cfg.PostgresURL())
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("%v", err)
	}

	hs := historian.NewService(rdb, store, historian.Options{
		QueueName:  cfg.QueueName,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
		Inactivity: cfg.InactivityTimeout,
	}, logger)
	hs.Run(ctx)
	logger.Info("Historian shutdown complete.")
}
