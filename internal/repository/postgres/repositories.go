package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
)

// NewRepositories creates a new set of repositories on the given pool
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Order:              NewOrderRepository(db, logger),
		LineItem:           NewLineItemRepository(db, logger),
		FulfillmentAttempt: NewFulfillmentAttemptRepository(db, logger),
		DispatchJob:        NewDispatchJobRepository(db, logger),
		WebhookDelivery:    NewWebhookDeliveryRepository(db, logger),
		Payment:            NewPaymentRepository(db, logger),
		Product:            NewProductRepository(db, logger),
		Locale:             NewLocaleRepository(db, logger),
		IdempotencyKey:     NewIdempotencyKeyRepository(db, logger),
	}
}
