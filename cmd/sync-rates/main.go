package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository/postgres"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
)

// Runs one exchange-rate sync and exits. The server does this on an
// interval; this is for cron or manual runs.
func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if !cfg.Rates.Configured() {
		logger.Fatal("RATES_SYNC_URL is not configured")
	}

	db, err := postgres.NewAdminConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	syncer := service.NewRateSyncer(repos.Locale, cfg.Rates, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := syncer.SyncOnce(ctx); err != nil {
		logger.Fatal("Rate sync failed", zap.Error(err))
	}
}
