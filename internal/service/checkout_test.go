package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/payment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

type catalogProductRepo struct {
	repository.ProductRepository
	products map[string]*domain.Product
}

func (c *catalogProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	p, ok := c.products[sku]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	return p, nil
}

type memPaymentRepo struct {
	repository.PaymentRepository
	created []*domain.Payment
}

func (m *memPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	m.created = append(m.created, p)
	return nil
}

type memIdemRepo struct {
	repository.IdempotencyKeyRepository
	keys map[string]*domain.IdempotencyKey
}

func (m *memIdemRepo) GetByKey(_ context.Context, key string) (*domain.IdempotencyKey, error) {
	return m.keys[key], nil
}

func (m *memIdemRepo) Create(_ context.Context, k *domain.IdempotencyKey) error {
	if m.keys == nil {
		m.keys = make(map[string]*domain.IdempotencyKey)
	}
	m.keys[k.Key] = k
	return nil
}

type checkoutHarness struct {
	svc      *CheckoutService
	orders   *memOrderRepo
	payments *memPaymentRepo
}

func newCheckoutHarness() *checkoutHarness {
	logger := zap.NewNop()
	orders := &memOrderRepo{}
	payments := &memPaymentRepo{}

	tee := &domain.Product{
		ID:     uuid.New(),
		Handle: "geek-tee",
		Title:  "Geek Tee",
		Variants: []*domain.Variant{
			{SKU: "PF-TEE-001", Title: "M / Black", Price: 15000, InventoryQuantity: 10},
		},
	}
	mug := &domain.Product{
		ID:     uuid.New(),
		Handle: "geek-mug",
		Title:  "Geek Mug",
		Variants: []*domain.Variant{
			{SKU: "PY-MUG-001", Title: "11oz", Price: 4500, InventoryQuantity: 2},
		},
	}
	repos := &repository.Repositories{
		Order:    orders,
		LineItem: &memLineItemRepo{},
		Payment:  payments,
		Product: &catalogProductRepo{products: map[string]*domain.Product{
			"PF-TEE-001": tee,
			"PY-MUG-001": mug,
		}},
		IdempotencyKey: &memIdemRepo{},
	}

	// crypto is the one provider whose Initialize makes no network call
	router := payment.NewRouter(&config.Config{
		Crypto: config.CryptoConfig{
			RPCURL:         "http://localhost:8545",
			ReceiveAddress: "0x90F79bf6EB2c4f870365E785982E1f101E93b906",
		},
	}, logger)

	store := config.StoreConfig{
		Currency:              "NGN",
		TaxRate:               0.075,
		FlatShippingFee:       2500,
		FreeShippingThreshold: 50000,
	}

	return &checkoutHarness{
		svc:      NewCheckoutService(repos, router, NewMailer(config.EmailConfig{}, logger), store, logger),
		orders:   orders,
		payments: payments,
	}
}

func checkoutRequest() *CheckoutRequest {
	return &CheckoutRequest{
		Email:         "buyer@example.com",
		PaymentMethod: domain.PaymentMethodCrypto,
		ShippingAddress: CheckoutAddress{
			Name: "Ada Obi", Address1: "12 Marina Rd", City: "Lagos", Country: "Nigeria",
		},
		Items: []CheckoutItem{{SKU: "PF-TEE-001", Quantity: 3}},
	}
}

func TestCreateCheckoutPricesFromCatalog(t *testing.T) {
	h := newCheckoutHarness()

	resp, err := h.svc.CreateCheckout(context.Background(), "", "", checkoutRequest())
	require.NoError(t, err)

	// 3 x 15000 priced server-side, 7.5% tax, flat shipping below threshold
	assert.Equal(t, 50875.0, resp.Amount)
	assert.Equal(t, "NGN", resp.Currency)
	assert.True(t, strings.HasPrefix(resp.Reference, "eth_"))
	assert.NotEmpty(t, resp.Extra["receive_address"])

	require.Len(t, h.orders.created, 1)
	order := h.orders.created[0]
	assert.Equal(t, 45000.0, order.Subtotal)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, domain.FulfillmentStatusPending, order.FulfillmentStatus)

	require.Len(t, h.payments.created, 1)
	assert.Equal(t, resp.Reference, h.payments.created[0].Reference)
	assert.Equal(t, domain.PaymentStatusPending, h.payments.created[0].Status)
}

func TestCreateCheckoutUnknownSKU(t *testing.T) {
	h := newCheckoutHarness()
	req := checkoutRequest()
	req.Items = []CheckoutItem{{SKU: "NOPE-404", Quantity: 1}}

	_, err := h.svc.CreateCheckout(context.Background(), "", "", req)
	var validationErr *errors.ErrValidation
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, h.orders.created)
}

func TestCreateCheckoutIdempotentReplay(t *testing.T) {
	h := newCheckoutHarness()

	first, err := h.svc.CreateCheckout(context.Background(), "key-1", "hash-a", checkoutRequest())
	require.NoError(t, err)

	second, err := h.svc.CreateCheckout(context.Background(), "key-1", "hash-a", checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.Reference, second.Reference)
	// replay creates nothing new
	assert.Len(t, h.orders.created, 1)
	assert.Len(t, h.payments.created, 1)
}

func TestCreateCheckoutIdempotencyKeyBodyMismatch(t *testing.T) {
	h := newCheckoutHarness()

	_, err := h.svc.CreateCheckout(context.Background(), "key-1", "hash-a", checkoutRequest())
	require.NoError(t, err)

	_, err = h.svc.CreateCheckout(context.Background(), "key-1", "hash-b", checkoutRequest())
	var conflictErr *errors.ErrConflict
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateCheckoutClampsQuantityToStock(t *testing.T) {
	h := newCheckoutHarness()
	req := checkoutRequest()
	req.Items = []CheckoutItem{{SKU: "PY-MUG-001", Quantity: 5}}

	resp, err := h.svc.CreateCheckout(context.Background(), "", "", req)
	require.NoError(t, err)

	// only 2 in stock: 2 x 4500 + 7.5% tax + flat shipping
	assert.Equal(t, 12175.0, resp.Amount)
	assert.Equal(t, 9000.0, h.orders.created[0].Subtotal)
}

func TestCreateCheckoutMergesDuplicateSKUs(t *testing.T) {
	h := newCheckoutHarness()
	req := checkoutRequest()
	req.Items = []CheckoutItem{
		{SKU: "PF-TEE-001", Quantity: 2},
		{SKU: "PF-TEE-001", Quantity: 1},
	}

	resp, err := h.svc.CreateCheckout(context.Background(), "", "", req)
	require.NoError(t, err)
	assert.Equal(t, 50875.0, resp.Amount) // 3 x 15000 + tax + shipping
}
