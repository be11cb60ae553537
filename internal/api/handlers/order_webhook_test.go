package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

const webhookSecret = "test-webhook-secret"

type recordingOrderRepo struct {
	repository.OrderRepository
	created []*domain.Order
}

func (r *recordingOrderRepo) Create(_ context.Context, o *domain.Order) error {
	o.ID = uuid.New()
	r.created = append(r.created, o)
	return nil
}

func (r *recordingOrderRepo) GetByExternalOrderID(_ context.Context, id string) (*domain.Order, error) {
	return nil, &errors.ErrNotFound{Resource: "order", ID: id}
}

type recordingLineItemRepo struct {
	repository.LineItemRepository
}

func (r *recordingLineItemRepo) CreateBatch(_ context.Context, _ []*domain.LineItem) error {
	return nil
}

type recordingJobRepo struct {
	repository.DispatchJobRepository
	enqueued int
}

func (r *recordingJobRepo) Enqueue(_ context.Context, _ *domain.DispatchJob) error {
	r.enqueued++
	return nil
}

type recordingDeliveryRepo struct {
	repository.WebhookDeliveryRepository
	recorded []string
}

func (r *recordingDeliveryRepo) Record(_ context.Context, externalOrderID string) (bool, error) {
	r.recorded = append(r.recorded, externalOrderID)
	return true, nil
}

type webhookTestEnv struct {
	router     *gin.Engine
	orders     *recordingOrderRepo
	jobs       *recordingJobRepo
	deliveries *recordingDeliveryRepo
}

func newWebhookTestEnv() *webhookTestEnv {
	gin.SetMode(gin.TestMode)

	orders := &recordingOrderRepo{}
	jobs := &recordingJobRepo{}
	deliveries := &recordingDeliveryRepo{}
	repos := &repository.Repositories{
		Order:           orders,
		LineItem:        &recordingLineItemRepo{},
		DispatchJob:     jobs,
		WebhookDelivery: deliveries,
	}

	svc := service.NewWebhookService(repos, zap.NewNop())
	handler := NewOrderWebhookHandler(svc, config.ShopifyConfig{WebhookSecret: webhookSecret}, zap.NewNop())

	router := gin.New()
	router.POST("/api/webhook/order", handler.Handle)

	return &webhookTestEnv{router: router, orders: orders, jobs: jobs, deliveries: deliveries}
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(env *webhookTestEnv, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func validBody() []byte {
	return []byte(`{
		"id": 5551234,
		"name": "#1042",
		"email": "buyer@example.com",
		"currency": "NGN",
		"subtotal_price": "45000.00",
		"total_tax": "3375.00",
		"total_price": "50875.00",
		"shipping_address": {"name":"Ada Obi","address1":"12 Marina Rd","city":"Lagos","country":"Nigeria"},
		"line_items": [{"title":"Geek Tee","sku":"PF-TEE-001","quantity":3,"price":"15000.00"}]
	}`)
}

func TestWebhookAcceptsSignedDelivery(t *testing.T) {
	env := newWebhookTestEnv()
	body := validBody()

	w := postWebhook(env, body, sign(body, webhookSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
	assert.Len(t, env.orders.created, 1)
	assert.Equal(t, 1, env.jobs.enqueued)
}

func TestWebhookRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	env := newWebhookTestEnv()
	body := validBody()

	w := postWebhook(env, body, sign(body, "wrong-secret"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, env.orders.created)
	assert.Empty(t, env.deliveries.recorded)
	assert.Zero(t, env.jobs.enqueued)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	env := newWebhookTestEnv()
	body := validBody()

	w := postWebhook(env, body, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, env.orders.created)
}

func TestWebhookSignedGarbageIsServerError(t *testing.T) {
	env := newWebhookTestEnv()
	body := []byte(`{"unexpected": "shape"}`)

	// correctly signed but unparseable as an order: 500 so the sender
	// redelivers after the bug is fixed
	w := postWebhook(env, body, sign(body, webhookSecret))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.orders.created)
}

func TestWebhookNoSecretConfiguredRejectsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repos := &repository.Repositories{}
	svc := service.NewWebhookService(repos, zap.NewNop())
	handler := NewOrderWebhookHandler(svc, config.ShopifyConfig{}, zap.NewNop())

	router := gin.New()
	router.POST("/api/webhook/order", handler.Handle)

	body := validBody()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/order", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", sign(body, "anything"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
