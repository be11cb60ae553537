package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
)

// RateSyncer refreshes exchange rates from an external API on an interval.
// Synced rates are stored with source "api"; manual rates for other pairs
// are left alone.
type RateSyncer struct {
	repo       repository.LocaleRepository
	cfg        config.RatesConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRateSyncer creates the exchange-rate sync loop
func NewRateSyncer(repo repository.LocaleRepository, cfg config.RatesConfig, logger *zap.Logger) *RateSyncer {
	return &RateSyncer{
		repo:       repo,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// ratesResponse is the open.er-api.com style payload: one base currency and
// a rate per target code
type ratesResponse struct {
	Base  string             `json:"base_code"`
	Rates map[string]float64 `json:"rates"`
}

// Run syncs on the configured interval until the context is cancelled. One
// sync runs immediately at startup.
func (s *RateSyncer) Run(ctx context.Context) {
	if !s.cfg.Configured() {
		s.logger.Info("Rate sync disabled: no sync URL configured")
		return
	}

	s.logger.Info("Rate sync started", zap.Duration("interval", s.cfg.SyncInterval))
	if err := s.SyncOnce(ctx); err != nil {
		s.logger.Warn("Initial rate sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Rate sync stopped")
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				s.logger.Warn("Rate sync failed", zap.Error(err))
			}
		}
	}
}

// SyncOnce fetches the rate table and upserts one directional rate per
// active currency pair with the base
func (s *RateSyncer) SyncOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SyncURL, nil)
	if err != nil {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("rate fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("rate api returned %d", resp.StatusCode)
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to parse rate response: %w", err)
	}
	if parsed.Base == "" || len(parsed.Rates) == 0 {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("rate response missing base or rates")
	}

	currencies, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		metrics.RateSyncRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list currencies: %w", err)
	}

	updated := 0
	for _, c := range currencies {
		if !c.IsActive || c.Code == parsed.Base {
			continue
		}
		rate, ok := parsed.Rates[c.Code]
		if !ok || rate <= 0 {
			continue
		}
		if err := s.repo.UpsertRate(ctx, &domain.ExchangeRate{
			FromCode: parsed.Base,
			ToCode:   c.Code,
			Rate:     rate,
			Source:   "api",
		}); err != nil {
			s.logger.Warn("Failed to store synced rate",
				zap.String("pair", parsed.Base+"/"+c.Code), zap.Error(err))
			continue
		}
		updated++
	}

	metrics.RateSyncRuns.WithLabelValues("success").Inc()
	s.logger.Info("Exchange rates synced",
		zap.String("base", parsed.Base), zap.Int("updated", updated))
	return nil
}
