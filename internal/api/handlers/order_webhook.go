package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
)

// OrderWebhookHandler receives Shopify orders/create webhooks
type OrderWebhookHandler struct {
	webhookService *service.WebhookService
	secret         string
	logger         *zap.Logger
}

// NewOrderWebhookHandler creates the webhook handler
func NewOrderWebhookHandler(webhookService *service.WebhookService, cfg config.ShopifyConfig, logger *zap.Logger) *OrderWebhookHandler {
	return &OrderWebhookHandler{
		webhookService: webhookService,
		secret:         cfg.WebhookSecret,
		logger:         logger,
	}
}

// Handle verifies the HMAC signature over the raw body and hands the payload
// to ingestion. A bad signature is a 401 with no side effects at all; a
// payload we cannot parse is a 500 so Shopify redelivers it.
func (h *OrderWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("parse_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read body"})
		return
	}

	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	if !h.verifySignature(body, signature) {
		metrics.WebhooksReceived.WithLabelValues("invalid_signature").Inc()
		h.logger.Warn("Webhook signature verification failed",
			zap.String("topic", c.GetHeader("X-Shopify-Topic")),
			zap.String("remote_addr", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload service.WebhookOrderPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == 0 {
		metrics.WebhooksReceived.WithLabelValues("parse_error").Inc()
		h.logger.Error("Webhook payload unparseable",
			zap.String("topic", c.GetHeader("X-Shopify-Topic")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse order"})
		return
	}

	if _, err := h.webhookService.IngestOrder(c.Request.Context(), &payload); err != nil {
		h.logger.Error("Webhook ingestion failed",
			zap.Int64("external_order_id", payload.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifySignature checks the base64 HMAC-SHA256 of the raw body in constant
// time. No secret configured means nothing verifies.
func (h *OrderWebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
