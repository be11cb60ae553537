package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

const orderColumns = `id, order_number, external_order_id, email, phone,
	subtotal, tax, shipping, total, currency,
	payment_method, payment_provider, payment_reference, payment_status,
	shipping_address, billing_address,
	fulfillment_provider, fulfillment_status, tracking_number, tracking_carrier,
	pod_response, admin_notes, tags, created_at, updated_at`

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = domain.FulfillmentStatusPending
	}

	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}
	var billingJSON []byte
	if order.BillingAddress != nil {
		billingJSON, err = json.Marshal(order.BillingAddress)
		if err != nil {
			return err
		}
	}
	var podJSON []byte
	if order.PODResponse != nil {
		podJSON, err = json.Marshal(order.PODResponse)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.ExternalOrderID,
		order.Email,
		order.Phone,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.Currency,
		order.PaymentMethod,
		order.PaymentProvider,
		order.PaymentReference,
		order.PaymentStatus,
		shippingJSON,
		billingJSON,
		order.FulfillmentProvider,
		order.FulfillmentStatus,
		order.TrackingNumber,
		order.TrackingCarrier,
		podJSON,
		order.AdminNotes,
		pq.Array(order.Tags),
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByExternalOrderID(ctx context.Context, externalOrderID string) (*domain.Order, error) {
	if externalOrderID == "" {
		return nil, &errors.ErrNotFound{Resource: "order", ID: "external_order_id empty"}
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE external_order_id = $1 LIMIT 1`
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, externalOrderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: externalOrderID}
	}
	if err != nil {
		r.logger.Error("Failed to get order by external order ID", zap.Error(err), zap.String("external_order_id", externalOrderID))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	if reference == "" {
		return nil, &errors.ErrNotFound{Resource: "order", ID: "payment_reference empty"}
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1 LIMIT 1`
	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get order by payment reference", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET email = $2, phone = $3, subtotal = $4, tax = $5, shipping = $6,
			total = $7, currency = $8, payment_method = $9, payment_provider = $10,
			payment_reference = $11, payment_status = $12, shipping_address = $13,
			billing_address = $14, fulfillment_provider = $15, fulfillment_status = $16,
			tracking_number = $17, tracking_carrier = $18, pod_response = $19,
			admin_notes = $20, tags = $21, updated_at = $22
		WHERE id = $1
	`

	order.UpdatedAt = time.Now()
	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}
	var billingJSON []byte
	if order.BillingAddress != nil {
		billingJSON, err = json.Marshal(order.BillingAddress)
		if err != nil {
			return err
		}
	}
	var podJSON []byte
	if order.PODResponse != nil {
		podJSON, err = json.Marshal(order.PODResponse)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.Email,
		order.Phone,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.Currency,
		order.PaymentMethod,
		order.PaymentProvider,
		order.PaymentReference,
		order.PaymentStatus,
		shippingJSON,
		billingJSON,
		order.FulfillmentProvider,
		order.FulfillmentStatus,
		order.TrackingNumber,
		order.TrackingCarrier,
		podJSON,
		order.AdminNotes,
		pq.Array(order.Tags),
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) UpdateFulfillment(ctx context.Context, id uuid.UUID, provider *string, status domain.FulfillmentStatus, podResponse map[string]interface{}) error {
	query := `
		UPDATE orders
		SET fulfillment_provider = COALESCE($2, fulfillment_provider),
			fulfillment_status = $3,
			pod_response = COALESCE($4, pod_response),
			updated_at = $5
		WHERE id = $1
	`

	var podJSON []byte
	if podResponse != nil {
		var err error
		podJSON, err = json.Marshal(podResponse)
		if err != nil {
			return err
		}
	}

	_, err := r.db.ExecContext(ctx, query, id, provider, status, podJSON, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order fulfillment", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) UpdateTracking(ctx context.Context, id uuid.UUID, trackingNumber string, carrier *string) error {
	query := `
		UPDATE orders
		SET tracking_number = $2, tracking_carrier = COALESCE($3, tracking_carrier),
			fulfillment_status = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, trackingNumber, carrier, domain.FulfillmentStatusShipped, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order tracking", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, status string, provider, reference *string) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
			payment_provider = COALESCE($3, payment_provider),
			payment_reference = COALESCE($4, payment_reference),
			updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, provider, reference, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order payment", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) UpdateAdminNotes(ctx context.Context, id uuid.UUID, notes string) error {
	query := `UPDATE orders SET admin_notes = $2, updated_at = $3 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, notes, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order admin notes", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, status *domain.FulfillmentStatus, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE fulfillment_status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, *status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var externalOrderID sql.NullString
	var paymentProvider sql.NullString
	var paymentReference sql.NullString
	var shippingJSON []byte
	var billingJSON []byte
	var fulfillmentProvider sql.NullString
	var trackingNumber sql.NullString
	var trackingCarrier sql.NullString
	var podJSON []byte
	var adminNotes sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&externalOrderID,
		&order.Email,
		&order.Phone,
		&order.Subtotal,
		&order.Tax,
		&order.Shipping,
		&order.Total,
		&order.Currency,
		&order.PaymentMethod,
		&paymentProvider,
		&paymentReference,
		&order.PaymentStatus,
		&shippingJSON,
		&billingJSON,
		&fulfillmentProvider,
		&order.FulfillmentStatus,
		&trackingNumber,
		&trackingCarrier,
		&podJSON,
		&adminNotes,
		&tags,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalOrderID.Valid {
		order.ExternalOrderID = &externalOrderID.String
	}
	if paymentProvider.Valid {
		order.PaymentProvider = &paymentProvider.String
	}
	if paymentReference.Valid {
		order.PaymentReference = &paymentReference.String
	}
	if fulfillmentProvider.Valid {
		order.FulfillmentProvider = &fulfillmentProvider.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = &trackingNumber.String
	}
	if trackingCarrier.Valid {
		order.TrackingCarrier = &trackingCarrier.String
	}
	if adminNotes.Valid {
		order.AdminNotes = &adminNotes.String
	}
	order.Tags = tags

	if err := json.Unmarshal(shippingJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}
	if len(billingJSON) > 0 {
		var billing domain.Address
		if err := json.Unmarshal(billingJSON, &billing); err != nil {
			return nil, err
		}
		order.BillingAddress = &billing
	}
	if len(podJSON) > 0 {
		if err := json.Unmarshal(podJSON, &order.PODResponse); err != nil {
			return nil, err
		}
	}

	return &order, nil
}
