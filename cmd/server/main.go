package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/api"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/api/handlers"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/fulfillment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/payment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository/postgres"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/shopify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting storefront API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	adminDB, err := postgres.NewAdminConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database with elevated role", zap.Error(err))
	}
	defer adminDB.Close()

	repos := postgres.NewRepositories(db, logger)
	adminRepos := postgres.NewRepositories(adminDB, logger)

	registry := fulfillment.NewRegistry(cfg, logger)
	logger.Info("Fulfillment providers registered", zap.Strings("providers", registry.Providers()))

	resolver := fulfillment.NewResolver(adminRepos.Product, logger)
	dispatcher := fulfillment.NewDispatcher(adminRepos, registry, resolver, logger)

	paymentRouter := payment.NewRouter(cfg, logger)
	mailer := service.NewMailer(cfg.Email, logger)
	shopifyClient := shopify.NewClient(cfg.Shopify, logger)

	webhookService := service.NewWebhookService(repos, logger)
	checkoutService := service.NewCheckoutService(repos, paymentRouter, mailer, cfg.Store, logger)
	adminService := service.NewAdminService(adminRepos, dispatcher, shopifyClient, mailer, logger)
	catalogService := service.NewCatalogService(repos.Product)
	localeService := service.NewLocaleService(adminRepos.Locale, logger)
	rateSyncer := service.NewRateSyncer(adminRepos.Locale, cfg.Rates, logger)

	router := api.NewRouter(cfg, db, api.Handlers{
		Webhook:     handlers.NewOrderWebhookHandler(webhookService, cfg.Shopify, logger),
		Checkout:    handlers.NewCheckoutHandler(checkoutService, logger),
		Products:    handlers.NewProductsHandler(catalogService),
		AdminOrders: handlers.NewAdminOrdersHandler(adminService, logger),
		Locale:      handlers.NewLocaleHandler(localeService, rateSyncer, logger),
	}, logger)

	// Background loops stop with the server
	bgCtx, cancelBg := context.WithCancel(context.Background())
	go dispatcher.Run(bgCtx, cfg.Dispatch.PollInterval)
	go rateSyncer.Run(bgCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancelBg()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		zcfg := zap.NewProductionConfig()
		if err := zcfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			return zcfg.Build()
		}
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
