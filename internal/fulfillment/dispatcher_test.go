package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// ---- fakes ----

type fakeOrderRepo struct {
	repository.OrderRepository
	orders             map[uuid.UUID]*domain.Order
	fulfillmentUpdates []domain.FulfillmentStatus
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return o, nil
}

func (f *fakeOrderRepo) UpdateFulfillment(_ context.Context, id uuid.UUID, provider *string, status domain.FulfillmentStatus, _ map[string]interface{}) error {
	f.fulfillmentUpdates = append(f.fulfillmentUpdates, status)
	if o, ok := f.orders[id]; ok {
		o.FulfillmentStatus = status
		if provider != nil {
			o.FulfillmentProvider = provider
		}
	}
	return nil
}

type fakeLineItemRepo struct {
	repository.LineItemRepository
	items map[uuid.UUID][]*domain.LineItem
}

func (f *fakeLineItemRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.LineItem, error) {
	return f.items[orderID], nil
}

func (f *fakeLineItemRepo) UpdateProvider(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type fakeAttemptRepo struct {
	repository.FulfillmentAttemptRepository
	attempts []*domain.FulfillmentAttempt
}

func (f *fakeAttemptRepo) Create(_ context.Context, a *domain.FulfillmentAttempt) error {
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeAttemptRepo) byStatus(status domain.AttemptStatus) []*domain.FulfillmentAttempt {
	var out []*domain.FulfillmentAttempt
	for _, a := range f.attempts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

type fakeJobRepo struct {
	repository.DispatchJobRepository
	doneStatus domain.JobStatus
	lastError  *string
}

func (f *fakeJobRepo) MarkDone(_ context.Context, _ uuid.UUID, status domain.JobStatus, lastError *string) error {
	f.doneStatus = status
	f.lastError = lastError
	return nil
}

type fakeProductRepo struct {
	repository.ProductRepository
	bySKU map[string]*domain.Product
}

func (f *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	p, ok := f.bySKU[sku]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: sku}
	}
	return p, nil
}

type fakeAdapter struct {
	name  string
	calls []OrderRequest
	fail  bool
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) CreateOrder(_ context.Context, req OrderRequest) (*OrderResult, error) {
	a.calls = append(a.calls, req)
	if a.fail {
		return nil, &errors.ErrProvider{Provider: a.name, StatusCode: 500, Body: "boom"}
	}
	return &OrderResult{
		Success:    true,
		Provider:   a.name,
		PODOrderID: "pod-123",
		Status:     "draft",
	}, nil
}

// ---- harness ----

type harness struct {
	dispatcher *Dispatcher
	orders     *fakeOrderRepo
	attempts   *fakeAttemptRepo
	jobs       *fakeJobRepo
	printful   *fakeAdapter
	printify   *fakeAdapter
}

func newHarness(t *testing.T, order *domain.Order, items []*domain.LineItem) *harness {
	t.Helper()

	orders := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{order.ID: order}}
	lineItems := &fakeLineItemRepo{items: map[uuid.UUID][]*domain.LineItem{order.ID: items}}
	attempts := &fakeAttemptRepo{}
	jobs := &fakeJobRepo{}
	products := &fakeProductRepo{bySKU: map[string]*domain.Product{}}

	repos := &repository.Repositories{
		Order:              orders,
		LineItem:           lineItems,
		FulfillmentAttempt: attempts,
		DispatchJob:        jobs,
		Product:            products,
	}

	logger := zap.NewNop()
	registry := NewRegistry(&config.Config{}, logger)
	printful := &fakeAdapter{name: domain.ProviderPrintful}
	printify := &fakeAdapter{name: domain.ProviderPrintify}
	registry.Register(printful)
	registry.Register(printify)

	resolver := NewResolver(products, logger)

	return &harness{
		dispatcher: NewDispatcher(repos, registry, resolver, logger),
		orders:     orders,
		attempts:   attempts,
		jobs:       jobs,
		printful:   printful,
		printify:   printify,
	}
}

func testOrder(tags ...string) *domain.Order {
	external := "5551234"
	return &domain.Order{
		ID:                uuid.New(),
		OrderNumber:       "GC-TEST1",
		ExternalOrderID:   &external,
		Email:             "buyer@example.com",
		Currency:          "NGN",
		FulfillmentStatus: domain.FulfillmentStatusPending,
		Tags:              tags,
		ShippingAddress: domain.Address{
			Name:     "Ada Obi",
			Address1: "12 Marina Rd",
			City:     "Lagos",
			Country:  "Nigeria",
		},
	}
}

func provider(name string) *string { return &name }

// ---- tests ----

func TestProcessJobGroupsByProvider(t *testing.T) {
	order := testOrder()
	items := []*domain.LineItem{
		{ID: uuid.New(), OrderID: order.ID, SKU: "PF-TEE-001", Title: "Tee", Quantity: 2, Provider: provider("printful")},
		{ID: uuid.New(), OrderID: order.ID, SKU: "PY-MUG-001", Title: "Mug", Quantity: 1, Provider: provider("printify")},
	}
	h := newHarness(t, order, items)

	job := &domain.DispatchJob{ID: uuid.New(), OrderID: order.ID, Status: domain.JobStatusRunning}
	require.NoError(t, h.dispatcher.ProcessJob(context.Background(), job))

	// one provider order per group
	require.Len(t, h.printful.calls, 1)
	require.Len(t, h.printify.calls, 1)
	assert.Equal(t, "PF-TEE-001", h.printful.calls[0].Items[0].SKU)
	assert.Equal(t, "PY-MUG-001", h.printify.calls[0].Items[0].SKU)
	assert.Equal(t, "5551234", h.printful.calls[0].ExternalID)

	// one success attempt per group
	assert.Len(t, h.attempts.byStatus(domain.AttemptStatusSuccess), 2)

	assert.Equal(t, domain.JobStatusCompleted, h.jobs.doneStatus)
	assert.Equal(t, domain.FulfillmentStatusProcessing, order.FulfillmentStatus)
}

func TestProcessJobUnresolvableItemDoesNotBlockSiblings(t *testing.T) {
	order := testOrder()
	items := []*domain.LineItem{
		{ID: uuid.New(), OrderID: order.ID, SKU: "PF-TEE-001", Title: "Tee", Quantity: 1, Provider: provider("printful")},
		{ID: uuid.New(), OrderID: order.ID, SKU: "ZZ-UNKNOWN", Title: "Mystery", Quantity: 1},
	}
	h := newHarness(t, order, items)

	job := &domain.DispatchJob{ID: uuid.New(), OrderID: order.ID, Status: domain.JobStatusRunning}
	require.NoError(t, h.dispatcher.ProcessJob(context.Background(), job))

	require.Len(t, h.printful.calls, 1)
	assert.Len(t, h.attempts.byStatus(domain.AttemptStatusError), 1)
	assert.Len(t, h.attempts.byStatus(domain.AttemptStatusSuccess), 1)
	assert.Equal(t, domain.JobStatusCompleted, h.jobs.doneStatus)
}

func TestProcessJobAllProvidersFail(t *testing.T) {
	order := testOrder()
	items := []*domain.LineItem{
		{ID: uuid.New(), OrderID: order.ID, SKU: "PF-TEE-001", Title: "Tee", Quantity: 1, Provider: provider("printful")},
	}
	h := newHarness(t, order, items)
	h.printful.fail = true

	job := &domain.DispatchJob{ID: uuid.New(), OrderID: order.ID, Status: domain.JobStatusRunning}
	require.NoError(t, h.dispatcher.ProcessJob(context.Background(), job))

	assert.Len(t, h.attempts.byStatus(domain.AttemptStatusFailed), 1)
	assert.Equal(t, domain.JobStatusFailed, h.jobs.doneStatus)
	assert.Equal(t, domain.FulfillmentStatusFailed, order.FulfillmentStatus)
}

func TestProcessJobSkipsTaggedOrders(t *testing.T) {
	order := testOrder(domain.TagManualReview)
	items := []*domain.LineItem{
		{ID: uuid.New(), OrderID: order.ID, SKU: "PF-TEE-001", Title: "Tee", Quantity: 1, Provider: provider("printful")},
	}
	h := newHarness(t, order, items)

	job := &domain.DispatchJob{ID: uuid.New(), OrderID: order.ID, Status: domain.JobStatusRunning}
	require.NoError(t, h.dispatcher.ProcessJob(context.Background(), job))

	assert.Empty(t, h.printful.calls)
	assert.Len(t, h.attempts.byStatus(domain.AttemptStatusSkipped), 1)
	assert.Equal(t, domain.JobStatusSkipped, h.jobs.doneStatus)
	// status untouched: the order waits for an admin
	assert.Equal(t, domain.FulfillmentStatusPending, order.FulfillmentStatus)
}

func TestDispatchOrderCarriesRetailCosts(t *testing.T) {
	order := testOrder()
	order.Subtotal, order.Tax, order.Shipping, order.Total = 45000, 3375, 2500, 50875
	items := []*domain.LineItem{
		{ID: uuid.New(), OrderID: order.ID, SKU: "PF-TEE-001", Title: "Tee", Quantity: 3, Provider: provider("printful")},
	}
	h := newHarness(t, order, items)

	outcome, err := h.dispatcher.DispatchOrder(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, outcome.AnySuccess)

	require.Len(t, h.printful.calls, 1)
	costs := h.printful.calls[0].RetailCosts
	require.NotNil(t, costs)
	assert.Equal(t, 50875.0, costs.Total)
	assert.Equal(t, "NGN", costs.Currency)
}
