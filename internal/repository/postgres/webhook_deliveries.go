package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type webhookDeliveryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWebhookDeliveryRepository creates the webhook dedupe repository
func NewWebhookDeliveryRepository(db *sql.DB, logger *zap.Logger) *webhookDeliveryRepository {
	return &webhookDeliveryRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts the external order id, returning false when it was already
// present. Shopify may redeliver a webhook; the second delivery must not
// enqueue a second dispatch.
func (r *webhookDeliveryRepository) Record(ctx context.Context, externalOrderID string) (bool, error) {
	query := `
		INSERT INTO webhook_deliveries (external_order_id, received_at)
		VALUES ($1, $2)
		ON CONFLICT (external_order_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, externalOrderID, time.Now())
	if err != nil {
		r.logger.Error("Failed to record webhook delivery", zap.Error(err), zap.String("external_order_id", externalOrderID))
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
