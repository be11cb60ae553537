package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// LocaleService manages the admin-configurable currencies, languages, and
// exchange rates
type LocaleService struct {
	repo   repository.LocaleRepository
	logger *zap.Logger
}

// NewLocaleService creates the locale settings service
func NewLocaleService(repo repository.LocaleRepository, logger *zap.Logger) *LocaleService {
	return &LocaleService{repo: repo, logger: logger}
}

// ListCurrencies returns all configured currencies
func (s *LocaleService) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	return s.repo.ListCurrencies(ctx)
}

// UpsertCurrency creates or updates a currency. Setting is_default clears the
// previous default in the same transaction.
func (s *LocaleService) UpsertCurrency(ctx context.Context, req *CurrencyRequest) (*domain.Currency, error) {
	position := req.SymbolPosition
	if position == "" {
		position = "before"
	}
	if position != "before" && position != "after" {
		return nil, &errors.ErrValidation{Message: "symbol_position must be before or after"}
	}
	if req.DecimalPlaces < 0 || req.DecimalPlaces > 8 {
		return nil, &errors.ErrValidation{Message: "decimal_places must be between 0 and 8"}
	}

	c := &domain.Currency{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Symbol:         req.Symbol,
		SymbolPosition: position,
		DecimalPlaces:  req.DecimalPlaces,
		IsActive:       req.IsActive,
		IsDefault:      req.IsDefault,
	}
	if err := s.repo.UpsertCurrency(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Currency upserted", zap.String("code", c.Code), zap.Bool("default", c.IsDefault))
	return c, nil
}

// DeleteCurrency removes a currency. The default currency cannot be deleted;
// make another currency the default first.
func (s *LocaleService) DeleteCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	currencies, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		return err
	}
	for _, c := range currencies {
		if c.Code == code && c.IsDefault {
			return &errors.ErrValidation{Message: "cannot delete the default currency"}
		}
	}
	return s.repo.DeleteCurrency(ctx, code)
}

// ListLanguages returns all configured languages
func (s *LocaleService) ListLanguages(ctx context.Context) ([]*domain.Language, error) {
	return s.repo.ListLanguages(ctx)
}

// UpsertLanguage creates or updates a language
func (s *LocaleService) UpsertLanguage(ctx context.Context, req *LanguageRequest) (*domain.Language, error) {
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if len(code) < 2 || len(code) > 5 {
		return nil, &errors.ErrValidation{Message: "language code must be 2-5 characters"}
	}

	l := &domain.Language{
		Code:       code,
		Name:       req.Name,
		NativeName: req.NativeName,
		RTL:        req.RTL,
		IsActive:   req.IsActive,
		IsDefault:  req.IsDefault,
	}
	if err := s.repo.UpsertLanguage(ctx, l); err != nil {
		return nil, err
	}
	s.logger.Info("Language upserted", zap.String("code", l.Code), zap.Bool("default", l.IsDefault))
	return l, nil
}

// DeleteLanguage removes a language. The default language cannot be deleted.
func (s *LocaleService) DeleteLanguage(ctx context.Context, code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	languages, err := s.repo.ListLanguages(ctx)
	if err != nil {
		return err
	}
	for _, l := range languages {
		if l.Code == code && l.IsDefault {
			return &errors.ErrValidation{Message: "cannot delete the default language"}
		}
	}
	return s.repo.DeleteLanguage(ctx, code)
}

// ListRates returns all stored exchange rates
func (s *LocaleService) ListRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	return s.repo.ListRates(ctx)
}

// UpsertRate stores a manual directional rate. A->B and B->A are independent
// rows; setting one never touches the other.
func (s *LocaleService) UpsertRate(ctx context.Context, req *RateRequest) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(strings.TrimSpace(req.FromCode))
	to := strings.ToUpper(strings.TrimSpace(req.ToCode))
	if from == to {
		return nil, &errors.ErrValidation{Message: "from_code and to_code must differ"}
	}

	r := &domain.ExchangeRate{
		FromCode: from,
		ToCode:   to,
		Rate:     req.Rate,
		Source:   "manual",
	}
	if err := s.repo.UpsertRate(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("Exchange rate upserted",
		zap.String("pair", from+"/"+to), zap.Float64("rate", req.Rate))
	return r, nil
}

// DeleteRate removes one directional rate
func (s *LocaleService) DeleteRate(ctx context.Context, fromCode, toCode string) error {
	return s.repo.DeleteRate(ctx, strings.ToUpper(strings.TrimSpace(fromCode)), strings.ToUpper(strings.TrimSpace(toCode)))
}
