package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

type localeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLocaleRepository creates the locale settings repository
func NewLocaleRepository(db *sql.DB, logger *zap.Logger) *localeRepository {
	return &localeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *localeRepository) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	query := `
		SELECT code, symbol, symbol_position, decimal_places, is_active, is_default, created_at, updated_at
		FROM currencies
		ORDER BY code ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list currencies", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var currencies []*domain.Currency
	for rows.Next() {
		var c domain.Currency
		err := rows.Scan(&c.Code, &c.Symbol, &c.SymbolPosition, &c.DecimalPlaces,
			&c.IsActive, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, &c)
	}

	return currencies, rows.Err()
}

// UpsertCurrency writes a currency. Marking one default clears the previous
// default in the same transaction so at most one currency is ever default.
func (r *localeRepository) UpsertCurrency(ctx context.Context, c *domain.Currency) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if c.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE currencies SET is_default = false WHERE code <> $1`, c.Code); err != nil {
			r.logger.Error("Failed to clear default currency", zap.Error(err))
			return err
		}
	}

	query := `
		INSERT INTO currencies (code, symbol, symbol_position, decimal_places, is_active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE
		SET symbol = EXCLUDED.symbol, symbol_position = EXCLUDED.symbol_position,
			decimal_places = EXCLUDED.decimal_places, is_active = EXCLUDED.is_active,
			is_default = EXCLUDED.is_default, updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, query, c.Code, c.Symbol, c.SymbolPosition,
		c.DecimalPlaces, c.IsActive, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert currency", zap.Error(err), zap.String("code", c.Code))
		return err
	}

	return tx.Commit()
}

func (r *localeRepository) DeleteCurrency(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM currencies WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("Failed to delete currency", zap.Error(err), zap.String("code", code))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "currency", ID: code}
	}
	return nil
}

func (r *localeRepository) ListLanguages(ctx context.Context) ([]*domain.Language, error) {
	query := `
		SELECT code, name, native_name, rtl, is_active, is_default, created_at, updated_at
		FROM languages
		ORDER BY code ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list languages", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var languages []*domain.Language
	for rows.Next() {
		var l domain.Language
		err := rows.Scan(&l.Code, &l.Name, &l.NativeName, &l.RTL,
			&l.IsActive, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, err
		}
		languages = append(languages, &l)
	}

	return languages, rows.Err()
}

func (r *localeRepository) UpsertLanguage(ctx context.Context, l *domain.Language) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	if l.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE languages SET is_default = false WHERE code <> $1`, l.Code); err != nil {
			r.logger.Error("Failed to clear default language", zap.Error(err))
			return err
		}
	}

	query := `
		INSERT INTO languages (code, name, native_name, rtl, is_active, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name, native_name = EXCLUDED.native_name,
			rtl = EXCLUDED.rtl, is_active = EXCLUDED.is_active,
			is_default = EXCLUDED.is_default, updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, query, l.Code, l.Name, l.NativeName, l.RTL,
		l.IsActive, l.IsDefault, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert language", zap.Error(err), zap.String("code", l.Code))
		return err
	}

	return tx.Commit()
}

func (r *localeRepository) DeleteLanguage(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM languages WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("Failed to delete language", zap.Error(err), zap.String("code", code))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "language", ID: code}
	}
	return nil
}

func (r *localeRepository) ListRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	query := `
		SELECT id, from_code, to_code, rate, source, updated_at
		FROM exchange_rates
		ORDER BY from_code, to_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list exchange rates", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var rates []*domain.ExchangeRate
	for rows.Next() {
		var rate domain.ExchangeRate
		err := rows.Scan(&rate.ID, &rate.FromCode, &rate.ToCode, &rate.Rate, &rate.Source, &rate.UpdatedAt)
		if err != nil {
			return nil, err
		}
		rates = append(rates, &rate)
	}

	return rates, rows.Err()
}

// GetRate looks up a directional rate: A->B is stored separately from B->A.
func (r *localeRepository) GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT id, from_code, to_code, rate, source, updated_at
		FROM exchange_rates
		WHERE from_code = $1 AND to_code = $2
	`

	var rate domain.ExchangeRate
	err := r.db.QueryRowContext(ctx, query, fromCode, toCode).Scan(
		&rate.ID, &rate.FromCode, &rate.ToCode, &rate.Rate, &rate.Source, &rate.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "exchange_rate", ID: fromCode + "->" + toCode}
	}
	if err != nil {
		r.logger.Error("Failed to get exchange rate", zap.Error(err))
		return nil, err
	}

	return &rate, nil
}

func (r *localeRepository) UpsertRate(ctx context.Context, rate *domain.ExchangeRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	rate.UpdatedAt = time.Now()

	query := `
		INSERT INTO exchange_rates (id, from_code, to_code, rate, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_code, to_code) DO UPDATE
		SET rate = EXCLUDED.rate, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, rate.ID, rate.FromCode, rate.ToCode,
		rate.Rate, rate.Source, rate.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert exchange rate", zap.Error(err),
			zap.String("from", rate.FromCode), zap.String("to", rate.ToCode))
		return err
	}
	return nil
}

func (r *localeRepository) DeleteRate(ctx context.Context, fromCode, toCode string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE from_code = $1 AND to_code = $2`, fromCode, toCode)
	if err != nil {
		r.logger.Error("Failed to delete exchange rate", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &errors.ErrNotFound{Resource: "exchange_rate", ID: fromCode + "->" + toCode}
	}
	return nil
}
