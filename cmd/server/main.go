// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/cache"
	"github.com/jason-s-yu/lotpoker/internal/config"
	"github.com/jason-s-yu/lotpoker/internal/database"
	"github.com/jason-s-yu/lotpoker/internal/deck"
	"github.com/jason-s-yu/lotpoker/internal/game"
	"github.com/jason-s-yu/lotpoker/internal/handlers"
	"github.com/jason-s-yu/lotpoker/internal/models"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := game.NewAuctionGame(cfg.HouseRules(), deck.NewRand(cfg.Seed))
	g.Logger = logger

	// action log (optional)
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Warnf("action log disabled: %v", err)
		} else {
			pub := cache.NewPublisher(rdb, cfg.QueueName)
			defer pub.Close()
			g.Actions = pub
			logger.Infof("publishing game actions to %s/%s", cfg.RedisAddr, cfg.QueueName)
		}
	}

	// results archive (optional)
	if url := cfg.PostgresURL(); url != "" {
		store, err := database.ConnectDB(ctx, url)
		if err != nil {
			logger.Warnf("results archive disabled: %v", err)
		} else if err := store.EnsureSchema(ctx); err != nil {
			logger.Warnf("results archive disabled: %v", err)
			store.Close()
		} else {
			defer store.Close()
			g.OnGameEnd = archiveResults(logger, store)
			logger.Infof("archiving results to %s:%s/%s", cfg.PGHost, cfg.PGPort, cfg.PGDatabase)
		}
	}

	srv := handlers.NewGameServer(g, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(logger, srv),
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		srv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s (min players %d, starting money %d)", httpServer.Addr, cfg.MinPlayers, cfg.StartingMoney)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}

// archiveResults returns an OnGameEnd hook that stores the results off the game lock.
func archiveResults(logger *logrus.Logger, store *database.Store) game.OnGameEndFunc {
	return func(gameID uuid.UUID, scores []models.ScoreDetail) {
		lines := append([]models.ScoreDetail(nil), scores...)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := store.RecordGameResults(ctx, gameID, lines); err != nil {
				logger.Errorf("archiving game %v: %v", gameID, err)
			}
		}()
	}
}
