package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// Mailer sends transactional emails through the EmailJS REST API. Sends are
// fire-and-forget: a mail failure never fails the operation that triggered it.
type Mailer struct {
	cfg        config.EmailConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMailer creates the transactional mailer
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendOrderConfirmation emails the customer that payment landed
func (m *Mailer) SendOrderConfirmation(order *domain.Order) {
	m.send(order.Email, map[string]string{
		"order_number": order.OrderNumber,
		"total":        fmt.Sprintf("%.2f %s", order.Total, order.Currency),
		"subject":      "Order confirmed",
	})
}

// SendTrackingUpdate emails the customer their tracking number
func (m *Mailer) SendTrackingUpdate(order *domain.Order, trackingNumber, carrier string) {
	params := map[string]string{
		"order_number":    order.OrderNumber,
		"tracking_number": trackingNumber,
		"subject":         "Your order has shipped",
	}
	if carrier != "" {
		params["carrier"] = carrier
	}
	m.send(order.Email, params)
}

// send fires the request on a goroutine with its own deadline, decoupled
// from the caller's request context
func (m *Mailer) send(to string, params map[string]string) {
	if !m.cfg.Configured() || strings.TrimSpace(to) == "" {
		return
	}
	params["to_email"] = to

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		body := emailJSRequest{
			ServiceID:      m.cfg.ServiceID,
			TemplateID:     m.cfg.TemplateID,
			UserID:         m.cfg.UserID,
			AccessToken:    m.cfg.AccessToken,
			TemplateParams: params,
		}
		jsonData, err := json.Marshal(body)
		if err != nil {
			m.logger.Warn("Failed to marshal email request", zap.Error(err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/email/send", bytes.NewBuffer(jsonData))
		if err != nil {
			m.logger.Warn("Failed to create email request", zap.Error(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			m.logger.Warn("Email send failed", zap.String("to", to), zap.Error(err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			m.logger.Warn("Email send rejected",
				zap.String("to", to), zap.Int("status", resp.StatusCode))
			return
		}
		m.logger.Debug("Email sent", zap.String("to", to))
	}()
}
