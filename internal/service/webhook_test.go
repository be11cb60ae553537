package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// ---- fakes ----

type memOrderRepo struct {
	repository.OrderRepository
	created     []*domain.Order
	failCreates int
}

func (m *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if m.failCreates > 0 {
		m.failCreates--
		return fmt.Errorf("connection reset by peer")
	}
	o.ID = uuid.New()
	m.created = append(m.created, o)
	return nil
}

func (m *memOrderRepo) GetByExternalOrderID(_ context.Context, externalOrderID string) (*domain.Order, error) {
	for _, o := range m.created {
		if o.ExternalOrderID != nil && *o.ExternalOrderID == externalOrderID {
			return o, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: externalOrderID}
}

type memLineItemRepo struct {
	repository.LineItemRepository
	created []*domain.LineItem
}

func (m *memLineItemRepo) CreateBatch(_ context.Context, items []*domain.LineItem) error {
	m.created = append(m.created, items...)
	return nil
}

type memJobRepo struct {
	repository.DispatchJobRepository
	enqueued []*domain.DispatchJob
}

func (m *memJobRepo) Enqueue(_ context.Context, job *domain.DispatchJob) error {
	m.enqueued = append(m.enqueued, job)
	return nil
}

type memDeliveryRepo struct {
	repository.WebhookDeliveryRepository
	seen map[string]bool
}

func (m *memDeliveryRepo) Record(_ context.Context, externalOrderID string) (bool, error) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[externalOrderID] {
		return false, nil
	}
	m.seen[externalOrderID] = true
	return true, nil
}

type webhookHarness struct {
	svc        *WebhookService
	orders     *memOrderRepo
	items      *memLineItemRepo
	jobs       *memJobRepo
	deliveries *memDeliveryRepo
}

func newWebhookHarness() *webhookHarness {
	orders := &memOrderRepo{}
	items := &memLineItemRepo{}
	jobs := &memJobRepo{}
	deliveries := &memDeliveryRepo{}
	repos := &repository.Repositories{
		Order:           orders,
		LineItem:        items,
		DispatchJob:     jobs,
		WebhookDelivery: deliveries,
	}
	return &webhookHarness{
		svc:        NewWebhookService(repos, zap.NewNop()),
		orders:     orders,
		items:      items,
		jobs:       jobs,
		deliveries: deliveries,
	}
}

func webhookPayload() *WebhookOrderPayload {
	return &WebhookOrderPayload{
		ID:            5551234,
		Name:          "#1042",
		Email:         "buyer@example.com",
		Currency:      "NGN",
		SubtotalPrice: "45000.00",
		TotalTax:      "3375.00",
		TotalPrice:    "50875.00",
		ShippingAddress: &WebhookAddress{
			Name:     "Ada Obi",
			Address1: "12 Marina Rd",
			City:     "Lagos",
			Country:  "Nigeria",
		},
		LineItems: []WebhookLineItem{
			{
				Title:    "Geek Tee",
				SKU:      "PF-TEE-001",
				Quantity: 3,
				Price:    "15000.00",
				Properties: []WebhookItemProperty{
					{Name: "_preview_url", Value: "https://cdn.example.com/previews/a.png"},
				},
			},
		},
	}
}

// ---- tests ----

func TestIngestOrderCreatesAndEnqueues(t *testing.T) {
	h := newWebhookHarness()

	result, err := h.svc.IngestOrder(context.Background(), webhookPayload())
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.False(t, result.Parked)

	require.Len(t, h.orders.created, 1)
	order := h.orders.created[0]
	assert.Equal(t, "#1042", order.OrderNumber)
	assert.Equal(t, "5551234", *order.ExternalOrderID)
	assert.Equal(t, 45000.0, order.Subtotal)
	assert.Equal(t, 2500.0, order.Shipping) // total - subtotal - tax
	assert.Equal(t, domain.FulfillmentStatusPending, order.FulfillmentStatus)

	require.Len(t, h.items.created, 1)
	require.NotNil(t, h.items.created[0].PreviewURL)
	assert.Equal(t, "https://cdn.example.com/previews/a.png", *h.items.created[0].PreviewURL)

	require.Len(t, h.jobs.enqueued, 1)
	assert.Equal(t, order.ID, h.jobs.enqueued[0].OrderID)
}

func TestIngestOrderDeduplicatesRedelivery(t *testing.T) {
	h := newWebhookHarness()

	first, err := h.svc.IngestOrder(context.Background(), webhookPayload())
	require.NoError(t, err)

	second, err := h.svc.IngestOrder(context.Background(), webhookPayload())
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Len(t, h.orders.created, 1)
	assert.Len(t, h.jobs.enqueued, 1)
}

func TestIngestOrderRedeliveryAfterFailedCreate(t *testing.T) {
	h := newWebhookHarness()
	h.orders.failCreates = 1

	// First delivery dies after the dedupe row is written; the handler
	// returns 500 and Shopify redelivers.
	_, err := h.svc.IngestOrder(context.Background(), webhookPayload())
	require.Error(t, err)
	assert.Empty(t, h.orders.created)

	// The redelivery must not be swallowed as a duplicate: no order exists
	// yet, so it is ingested in full.
	result, err := h.svc.IngestOrder(context.Background(), webhookPayload())
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	require.Len(t, h.orders.created, 1)
	assert.Len(t, h.jobs.enqueued, 1)
}

func TestIngestOrderNormalizesTags(t *testing.T) {
	h := newWebhookHarness()
	payload := webhookPayload()
	payload.Tags = " Manual-Review , VIP ,"

	result, err := h.svc.IngestOrder(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, result.Parked)

	order := h.orders.created[0]
	assert.Equal(t, []string{"manual-review", "vip"}, order.Tags)
	// parked orders still enqueue; the dispatcher records the skip
	assert.Len(t, h.jobs.enqueued, 1)
}

func TestIngestOrderAddressFallback(t *testing.T) {
	billing := &WebhookAddress{Name: "Bill Obi", Address1: "7 Allen Ave", City: "Ikeja", Country: "Nigeria"}
	customerDefault := &WebhookAddress{Name: "Cust Obi", Address1: "3 Bourdillon", City: "Lagos", Country: "Nigeria"}

	tests := []struct {
		name     string
		mutate   func(*WebhookOrderPayload)
		wantName string
	}{
		{
			name:     "shipping address wins",
			mutate:   func(p *WebhookOrderPayload) {},
			wantName: "Ada Obi",
		},
		{
			name: "billing when shipping missing",
			mutate: func(p *WebhookOrderPayload) {
				p.ShippingAddress = nil
				p.BillingAddress = billing
				p.Customer = &WebhookCustomer{DefaultAddress: customerDefault}
			},
			wantName: "Bill Obi",
		},
		{
			name: "customer default when both missing",
			mutate: func(p *WebhookOrderPayload) {
				p.ShippingAddress = nil
				p.Customer = &WebhookCustomer{DefaultAddress: customerDefault}
			},
			wantName: "Cust Obi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newWebhookHarness()
			payload := webhookPayload()
			tt.mutate(payload)

			_, err := h.svc.IngestOrder(context.Background(), payload)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, h.orders.created[0].ShippingAddress.Name)
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags("  "))
	assert.Equal(t, []string{"a", "b"}, SplitTags("A, b"))
}

func TestParseMoney(t *testing.T) {
	assert.Equal(t, 50875.0, parseMoney("50875.00"))
	assert.Equal(t, 0.0, parseMoney(""))
	assert.Equal(t, 0.0, parseMoney("garbage"))
}
