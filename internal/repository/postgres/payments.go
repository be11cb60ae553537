package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

type paymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *paymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (reference, order_id, provider, method, amount, currency, status, raw, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	if payment.Status == "" {
		payment.Status = domain.PaymentStatusPending
	}

	var rawJSON []byte
	if payment.Raw != nil {
		var err error
		rawJSON, err = json.Marshal(payment.Raw)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		payment.Reference,
		payment.OrderID,
		payment.Provider,
		payment.Method,
		payment.Amount,
		payment.Currency,
		payment.Status,
		rawJSON,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create payment", zap.Error(err), zap.String("reference", payment.Reference))
		return err
	}

	return nil
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `
		SELECT reference, order_id, provider, method, amount, currency, status, raw, created_at, updated_at
		FROM payments
		WHERE reference = $1
	`

	var payment domain.Payment
	var rawJSON []byte

	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&payment.Reference,
		&payment.OrderID,
		&payment.Provider,
		&payment.Method,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&rawJSON,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get payment by reference", zap.Error(err))
		return nil, err
	}

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &payment.Raw); err != nil {
			return nil, err
		}
	}

	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, reference, status string, raw map[string]interface{}) error {
	query := `
		UPDATE payments
		SET status = $2, raw = COALESCE($3, raw), updated_at = $4
		WHERE reference = $1
	`

	var rawJSON []byte
	if raw != nil {
		var err error
		rawJSON, err = json.Marshal(raw)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query, reference, status, rawJSON, time.Now())
	if err != nil {
		r.logger.Error("Failed to update payment status", zap.Error(err), zap.String("reference", reference))
		return err
	}
	return nil
}
