package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/cart"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/payment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// CheckoutService turns a cart into an order with an initialized payment.
// Prices always come from the catalog; the client's numbers are ignored.
type CheckoutService struct {
	repos  *repository.Repositories
	router *payment.Router
	mailer *Mailer
	store  config.StoreConfig
	logger *zap.Logger
}

// NewCheckoutService creates the checkout service
func NewCheckoutService(repos *repository.Repositories, router *payment.Router, mailer *Mailer, store config.StoreConfig, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		repos:  repos,
		router: router,
		mailer: mailer,
		store:  store,
		logger: logger,
	}
}

// CreateCheckout prices the cart, creates the order, and initializes the
// payment. A repeated idempotency key with the same request hash replays the
// original order instead of charging twice; the same key with a different
// body is a conflict.
func (s *CheckoutService) CreateCheckout(ctx context.Context, idemKey, requestHash string, req *CheckoutRequest) (*CheckoutResponse, error) {
	if idemKey != "" {
		existing, err := s.repos.IdempotencyKey.GetByKey(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			if existing.RequestHash != requestHash {
				return nil, &errors.ErrConflict{Message: "idempotency key reused with a different request body"}
			}
			return s.replayCheckout(ctx, existing.OrderID)
		}
	}

	c := cart.New()
	bySKU := make(map[string]*domain.LineItem)
	lineItems := make([]*domain.LineItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		// Duplicate SKUs merge: the cart accumulates the quantity and the
		// order carries one line per SKU
		if _, ok := bySKU[reqItem.SKU]; ok {
			c.AddQuantity(reqItem.SKU, reqItem.Quantity)
			continue
		}

		product, err := s.repos.Product.GetBySKU(ctx, reqItem.SKU)
		if err != nil {
			return nil, &errors.ErrValidation{Message: fmt.Sprintf("unknown sku %q", reqItem.SKU)}
		}
		variant := variantBySKU(product, reqItem.SKU)
		if variant == nil {
			return nil, &errors.ErrValidation{Message: fmt.Sprintf("unknown sku %q", reqItem.SKU)}
		}

		// Stock on hand caps the line below the global quantity limit
		c.SetItem(cart.Item{
			SKU:         reqItem.SKU,
			Title:       product.Title,
			UnitPrice:   variant.Price,
			Quantity:    reqItem.Quantity,
			MaxQuantity: variant.InventoryQuantity,
		})

		item := &domain.LineItem{
			Title:        product.Title,
			VariantTitle: variant.Title,
			SKU:          reqItem.SKU,
			UnitPrice:    variant.Price,
		}
		if reqItem.PreviewURL != "" {
			url := reqItem.PreviewURL
			item.PreviewURL = &url
		}
		if hint := product.FulfillmentProviderHint(); hint != "" {
			h := hint
			item.Provider = &h
		}
		bySKU[reqItem.SKU] = item
		lineItems = append(lineItems, item)
	}
	// Quantities come from the cart after clamping, not as submitted
	for _, cartItem := range c.Items() {
		if item, ok := bySKU[cartItem.SKU]; ok {
			item.Quantity = cartItem.Quantity
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.store.Currency
	}
	totals := c.Totals(cart.Pricing{
		Currency:              currency,
		TaxRate:               s.store.TaxRate,
		FlatShipping:          s.store.FlatShippingFee,
		FreeShippingThreshold: s.store.FreeShippingThreshold,
	})

	reference, err := s.router.NewReference(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	orderNumber := newOrderNumber()
	initResult, err := s.router.Initialize(ctx, req.PaymentMethod, payment.InitRequest{
		Reference: reference,
		Email:     req.Email,
		Amount:    totals.Total,
		Currency:  currency,
		Metadata:  map[string]interface{}{"order_number": orderNumber},
	})
	if err != nil {
		return nil, err
	}

	provider := initResult.Provider
	order := &domain.Order{
		OrderNumber:       orderNumber,
		Email:             req.Email,
		Phone:             req.Phone,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		Shipping:          totals.Shipping,
		Total:             totals.Total,
		Currency:          currency,
		PaymentMethod:     req.PaymentMethod,
		PaymentProvider:   &provider,
		PaymentReference:  &reference,
		PaymentStatus:     domain.PaymentStatusPending,
		ShippingAddress:   req.ShippingAddress.ToDomain(),
		FulfillmentStatus: domain.FulfillmentStatusPending,
	}
	if req.BillingAddress != nil {
		b := req.BillingAddress.ToDomain()
		order.BillingAddress = &b
	}
	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range lineItems {
		item.OrderID = order.ID
	}
	if err := s.repos.LineItem.CreateBatch(ctx, lineItems); err != nil {
		return nil, fmt.Errorf("failed to create line items: %w", err)
	}

	if err := s.repos.Payment.Create(ctx, &domain.Payment{
		Reference: reference,
		OrderID:   order.ID,
		Provider:  provider,
		Method:    req.PaymentMethod,
		Amount:    totals.Total,
		Currency:  currency,
		Status:    domain.PaymentStatusPending,
	}); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if idemKey != "" {
		if err := s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
			Key:         idemKey,
			OrderID:     order.ID,
			RequestHash: requestHash,
		}); err != nil {
			s.logger.Warn("Failed to store idempotency key",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Checkout created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", orderNumber),
		zap.String("reference", reference),
		zap.Float64("total", totals.Total),
		zap.String("currency", currency))

	return &CheckoutResponse{
		OrderID:     order.ID.String(),
		OrderNumber: orderNumber,
		Reference:   reference,
		PaymentURL:  initResult.PaymentURL,
		Provider:    provider,
		Amount:      totals.Total,
		Currency:    currency,
		Extra:       initResult.Extra,
	}, nil
}

// replayCheckout rebuilds the response for an order already created under the
// same idempotency key. The payment URL is gone; the reference lets the
// client resume verification.
func (s *CheckoutService) replayCheckout(ctx context.Context, orderID uuid.UUID) (*CheckoutResponse, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := &CheckoutResponse{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Currency:    order.Currency,
	}
	if order.PaymentReference != nil {
		resp.Reference = *order.PaymentReference
	}
	if order.PaymentProvider != nil {
		resp.Provider = *order.PaymentProvider
	}
	return resp, nil
}

// VerifyCheckout verifies a payment by reference, updates the payment and
// order, and enqueues dispatch on success
func (s *CheckoutService) VerifyCheckout(ctx context.Context, reference string) (*VerifyResponse, error) {
	result, err := s.router.VerifyReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Payment.UpdateStatus(ctx, reference, result.Status, result.Raw); err != nil {
		s.logger.Warn("Failed to update payment status",
			zap.String("reference", reference), zap.Error(err))
	}

	resp := &VerifyResponse{Reference: reference, Status: result.Status}

	order, err := s.repos.Order.GetByPaymentReference(ctx, reference)
	if err != nil {
		// Crypto references carry the tx hash, not a stored reference; the
		// verification result stands on its own.
		return resp, nil
	}
	resp.OrderID = order.ID.String()
	resp.OrderNumber = order.OrderNumber

	if order.PaymentStatus == result.Status {
		return resp, nil
	}

	if err := s.repos.Order.UpdatePayment(ctx, order.ID, result.Status, order.PaymentProvider, &reference); err != nil {
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}

	if result.Status == domain.PaymentStatusSuccess && order.FulfillmentStatus == domain.FulfillmentStatusPending {
		job := &domain.DispatchJob{OrderID: order.ID, Status: domain.JobStatusQueued}
		if err := s.repos.DispatchJob.Enqueue(ctx, job); err != nil {
			s.logger.Error("Failed to enqueue dispatch after payment",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
		s.mailer.SendOrderConfirmation(order)
	}

	return resp, nil
}

// variantBySKU finds the variant matching a SKU, falling back to the default
// variant when the SKU identifies the product itself
func variantBySKU(p *domain.Product, sku string) *domain.Variant {
	for _, v := range p.Variants {
		if v.SKU == sku {
			return v
		}
	}
	return p.DefaultVariant()
}

// newOrderNumber generates a short human-readable order number
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "GC-" + id[:10]
}
