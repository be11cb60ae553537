package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

type fulfillmentAttemptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFulfillmentAttemptRepository creates the append-only dispatch log
// repository. Attempts are inserted, never updated or deleted.
func NewFulfillmentAttemptRepository(db *sql.DB, logger *zap.Logger) *fulfillmentAttemptRepository {
	return &fulfillmentAttemptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *fulfillmentAttemptRepository) Create(ctx context.Context, attempt *domain.FulfillmentAttempt) error {
	query := `
		INSERT INTO fulfillment_attempts (
			id, order_id, external_order_id, provider, status,
			pod_order_id, detail, raw_response, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	var rawJSON []byte
	if attempt.RawResponse != nil {
		var err error
		rawJSON, err = json.Marshal(attempt.RawResponse)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.OrderID,
		attempt.ExternalOrderID,
		attempt.Provider,
		attempt.Status,
		attempt.PODOrderID,
		attempt.Detail,
		rawJSON,
		attempt.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create fulfillment attempt", zap.Error(err), zap.String("provider", attempt.Provider))
		return err
	}

	return nil
}

func (r *fulfillmentAttemptRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.FulfillmentAttempt, error) {
	query := `
		SELECT id, order_id, external_order_id, provider, status,
			pod_order_id, detail, raw_response, created_at
		FROM fulfillment_attempts
		WHERE order_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, orderID)
}

func (r *fulfillmentAttemptRepository) ListByExternalOrderID(ctx context.Context, externalOrderID string) ([]*domain.FulfillmentAttempt, error) {
	query := `
		SELECT id, order_id, external_order_id, provider, status,
			pod_order_id, detail, raw_response, created_at
		FROM fulfillment_attempts
		WHERE external_order_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, externalOrderID)
}

func (r *fulfillmentAttemptRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.FulfillmentAttempt, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to list fulfillment attempts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.FulfillmentAttempt
	for rows.Next() {
		var attempt domain.FulfillmentAttempt
		var podOrderID sql.NullString
		var detail sql.NullString
		var rawJSON []byte

		err := rows.Scan(
			&attempt.ID,
			&attempt.OrderID,
			&attempt.ExternalOrderID,
			&attempt.Provider,
			&attempt.Status,
			&podOrderID,
			&detail,
			&rawJSON,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if podOrderID.Valid {
			attempt.PODOrderID = &podOrderID.String
		}
		if detail.Valid {
			attempt.Detail = &detail.String
		}
		if len(rawJSON) > 0 {
			if err := json.Unmarshal(rawJSON, &attempt.RawResponse); err != nil {
				return nil, err
			}
		}

		attempts = append(attempts, &attempt)
	}

	return attempts, rows.Err()
}
