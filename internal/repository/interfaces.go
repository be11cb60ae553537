package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateFulfillment(ctx context.Context, id uuid.UUID, provider *string, status domain.FulfillmentStatus, podResponse map[string]interface{}) error
	UpdateTracking(ctx context.Context, id uuid.UUID, trackingNumber string, carrier *string) error
	UpdatePayment(ctx context.Context, id uuid.UUID, status string, provider, reference *string) error
	UpdateAdminNotes(ctx context.Context, id uuid.UUID, notes string) error
	List(ctx context.Context, status *domain.FulfillmentStatus, limit, offset int) ([]*domain.Order, error)
}

// LineItemRepository defines order line item data access methods
type LineItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.LineItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.LineItem, error)
	UpdateProvider(ctx context.Context, id uuid.UUID, provider string) error
}

// FulfillmentAttemptRepository is the append-only dispatch log
type FulfillmentAttemptRepository interface {
	Create(ctx context.Context, attempt *domain.FulfillmentAttempt) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.FulfillmentAttempt, error)
	ListByExternalOrderID(ctx context.Context, externalOrderID string) ([]*domain.FulfillmentAttempt, error)
}

// DispatchJobRepository defines the durable dispatch queue
type DispatchJobRepository interface {
	Enqueue(ctx context.Context, job *domain.DispatchJob) error
	// ClaimNext atomically moves the oldest queued job to running.
	// Returns nil, nil when the queue is empty.
	ClaimNext(ctx context.Context) (*domain.DispatchJob, error)
	MarkDone(ctx context.Context, id uuid.UUID, status domain.JobStatus, lastError *string) error
	Requeue(ctx context.Context, id uuid.UUID) error
	ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]*domain.DispatchJob, error)
}

// WebhookDeliveryRepository dedupes webhook redeliveries by external order id
type WebhookDeliveryRepository interface {
	// Record returns false when the external order id was already recorded
	Record(ctx context.Context, externalOrderID string) (bool, error)
}

// PaymentRepository defines payment transaction data access methods
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, reference, status string, raw map[string]interface{}) error
}

// ProductRepository defines catalog data access methods
type ProductRepository interface {
	GetByHandle(ctx context.Context, handle string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	ListDesigns(ctx context.Context, limit, offset int) ([]*domain.Design, error)
}

// LocaleRepository defines currency/language/exchange-rate settings access
type LocaleRepository interface {
	ListCurrencies(ctx context.Context) ([]*domain.Currency, error)
	UpsertCurrency(ctx context.Context, c *domain.Currency) error
	DeleteCurrency(ctx context.Context, code string) error

	ListLanguages(ctx context.Context) ([]*domain.Language, error)
	UpsertLanguage(ctx context.Context, l *domain.Language) error
	DeleteLanguage(ctx context.Context, code string) error

	ListRates(ctx context.Context) ([]*domain.ExchangeRate, error)
	GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
	UpsertRate(ctx context.Context, r *domain.ExchangeRate) error
	DeleteRate(ctx context.Context, fromCode, toCode string) error
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories. The server builds two instances:
// one on the request-scoped read pool and one on the elevated write pool used
// by admin actions and the dispatcher.
type Repositories struct {
	Order              OrderRepository
	LineItem           LineItemRepository
	FulfillmentAttempt FulfillmentAttemptRepository
	DispatchJob        DispatchJobRepository
	WebhookDelivery    WebhookDeliveryRepository
	Payment            PaymentRepository
	Product            ProductRepository
	Locale             LocaleRepository
	IdempotencyKey     IdempotencyKeyRepository
}
