package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/fulfillment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// ---- additional fake methods for the admin flow ----

func (m *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range m.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (m *memOrderRepo) Update(_ context.Context, o *domain.Order) error {
	if _, err := m.GetByID(context.Background(), o.ID); err != nil {
		return err
	}
	return nil
}

func (m *memOrderRepo) UpdateFulfillment(_ context.Context, id uuid.UUID, provider *string, status domain.FulfillmentStatus, _ map[string]interface{}) error {
	o, err := m.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	o.FulfillmentStatus = status
	if provider != nil {
		o.FulfillmentProvider = provider
	}
	return nil
}

func (m *memOrderRepo) UpdateTracking(_ context.Context, id uuid.UUID, trackingNumber string, carrier *string) error {
	o, err := m.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	o.TrackingNumber = &trackingNumber
	o.TrackingCarrier = carrier
	o.FulfillmentStatus = domain.FulfillmentStatusShipped
	return nil
}

func (m *memOrderRepo) UpdateAdminNotes(_ context.Context, id uuid.UUID, notes string) error {
	o, err := m.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	o.AdminNotes = &notes
	return nil
}

func (m *memLineItemRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.LineItem, error) {
	var out []*domain.LineItem
	for _, item := range m.created {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memLineItemRepo) UpdateProvider(_ context.Context, id uuid.UUID, provider string) error {
	for _, item := range m.created {
		if item.ID == id {
			p := provider
			item.Provider = &p
		}
	}
	return nil
}

type memAttemptRepo struct {
	repository.FulfillmentAttemptRepository
	attempts []*domain.FulfillmentAttempt
}

func (m *memAttemptRepo) Create(_ context.Context, a *domain.FulfillmentAttempt) error {
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memAttemptRepo) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.FulfillmentAttempt, error) {
	var out []*domain.FulfillmentAttempt
	for _, a := range m.attempts {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memProductRepo struct {
	repository.ProductRepository
}

func (m *memProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
}

type stubAdapter struct {
	name  string
	calls int
	fail  bool
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) CreateOrder(_ context.Context, _ fulfillment.OrderRequest) (*fulfillment.OrderResult, error) {
	a.calls++
	if a.fail {
		return nil, &errors.ErrProvider{Provider: a.name, StatusCode: 500, Body: "down"}
	}
	return &fulfillment.OrderResult{Success: true, Provider: a.name, PODOrderID: "pod-1"}, nil
}

type adminHarness struct {
	svc      *AdminService
	orders   *memOrderRepo
	items    *memLineItemRepo
	attempts *memAttemptRepo
	adapter  *stubAdapter
}

func newAdminHarness() *adminHarness {
	logger := zap.NewNop()
	orders := &memOrderRepo{}
	items := &memLineItemRepo{}
	attempts := &memAttemptRepo{}
	repos := &repository.Repositories{
		Order:              orders,
		LineItem:           items,
		FulfillmentAttempt: attempts,
		Product:            &memProductRepo{},
	}

	registry := fulfillment.NewRegistry(&config.Config{}, logger)
	adapter := &stubAdapter{name: domain.ProviderPrintful}
	registry.Register(adapter)

	resolver := fulfillment.NewResolver(repos.Product, logger)
	dispatcher := fulfillment.NewDispatcher(repos, registry, resolver, logger)
	mailer := NewMailer(config.EmailConfig{}, logger)

	return &adminHarness{
		svc:      NewAdminService(repos, dispatcher, nil, mailer, logger),
		orders:   orders,
		items:    items,
		attempts: attempts,
		adapter:  adapter,
	}
}

func (h *adminHarness) seedOrder(status domain.FulfillmentStatus) *domain.Order {
	order := &domain.Order{
		OrderNumber:       "GC-SEED",
		Email:             "buyer@example.com",
		Currency:          "NGN",
		FulfillmentStatus: status,
		ShippingAddress: domain.Address{
			Name: "Ada Obi", Address1: "12 Marina Rd", City: "Lagos", Country: "Nigeria",
		},
	}
	_ = h.orders.Create(context.Background(), order)
	h.items.created = append(h.items.created, &domain.LineItem{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Title:    "Geek Tee",
		SKU:      "PF-TEE-001",
		Quantity: 1,
	})
	return order
}

// ---- tests ----

func TestFulfillPendingOrder(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusPending)

	result, err := h.svc.Fulfill(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{domain.ProviderPrintful}, result.Providers)
	assert.Equal(t, 1, h.adapter.calls)
	assert.Equal(t, domain.FulfillmentStatusProcessing, order.FulfillmentStatus)
}

func TestFulfillRetriesFailedOrder(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusFailed)

	result, err := h.svc.Fulfill(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestFulfillDeliveredOrderRejected(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusDelivered)

	_, err := h.svc.Fulfill(context.Background(), order.ID, "")
	var transitionErr *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transitionErr)
	assert.Zero(t, h.adapter.calls)
}

func TestFulfillBulkReturnsOneResultPerOrder(t *testing.T) {
	h := newAdminHarness()
	good := h.seedOrder(domain.FulfillmentStatusPending)
	delivered := h.seedOrder(domain.FulfillmentStatusDelivered)
	missing := uuid.New()

	results := h.svc.FulfillBulk(context.Background(), &BulkFulfillRequest{
		OrderIDs: []string{good.ID.String(), "not-a-uuid", delivered.ID.String(), missing.String()},
	})

	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.Equal(t, "invalid order id", results[1].Error)
	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Error)
	assert.False(t, results[3].Success)
	assert.NotEmpty(t, results[3].Error)
}

func TestFulfillBulkContinuesAfterProviderFailure(t *testing.T) {
	h := newAdminHarness()
	first := h.seedOrder(domain.FulfillmentStatusPending)
	second := h.seedOrder(domain.FulfillmentStatusPending)
	h.adapter.fail = true

	results := h.svc.FulfillBulk(context.Background(), &BulkFulfillRequest{
		OrderIDs: []string{first.ID.String(), second.ID.String()},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, 2, h.adapter.calls)
}

func TestFulfillBackfillsAddressFromProviderResponse(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusPending)
	order.ShippingAddress = domain.Address{}
	order.PODResponse = map[string]interface{}{
		"result": map[string]interface{}{
			"recipient": map[string]interface{}{
				"name": "Ada Obi", "address1": "12 Marina Rd", "city": "Lagos", "country_name": "Nigeria",
			},
		},
	}

	result, err := h.svc.Fulfill(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "12 Marina Rd", order.ShippingAddress.Address1)
}

func TestFulfillNoAddressAndNoBackfillSource(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusPending)
	order.ShippingAddress = domain.Address{}

	_, err := h.svc.Fulfill(context.Background(), order.ID, "")
	var validationErr *errors.ErrValidation
	assert.ErrorAs(t, err, &validationErr)
	assert.Zero(t, h.adapter.calls)
}

func TestUpdateTrackingMovesToShipped(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusProcessing)

	err := h.svc.UpdateTracking(context.Background(), order.ID, &TrackingRequest{
		TrackingNumber: "TRK-123", Carrier: "DHL",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentStatusShipped, order.FulfillmentStatus)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK-123", *order.TrackingNumber)
}

func TestUpdateTrackingRejectedForDelivered(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusDelivered)

	err := h.svc.UpdateTracking(context.Background(), order.ID, &TrackingRequest{TrackingNumber: "TRK-123"})
	var transitionErr *errors.ErrInvalidStateTransition
	assert.ErrorAs(t, err, &transitionErr)
}

func TestMarkDelivered(t *testing.T) {
	h := newAdminHarness()
	shipped := h.seedOrder(domain.FulfillmentStatusShipped)
	pending := h.seedOrder(domain.FulfillmentStatusPending)

	require.NoError(t, h.svc.MarkDelivered(context.Background(), shipped.ID))
	assert.Equal(t, domain.FulfillmentStatusDelivered, shipped.FulfillmentStatus)

	err := h.svc.MarkDelivered(context.Background(), pending.ID)
	var transitionErr *errors.ErrInvalidStateTransition
	assert.ErrorAs(t, err, &transitionErr)
}

func TestUpdateNotes(t *testing.T) {
	h := newAdminHarness()
	order := h.seedOrder(domain.FulfillmentStatusPending)

	require.NoError(t, h.svc.UpdateNotes(context.Background(), order.ID, "call customer before shipping"))
	require.NotNil(t, order.AdminNotes)
	assert.Equal(t, "call customer before shipping", *order.AdminNotes)
}
