package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// ikonshopAdapter talks to the first-party Ikonshop print service, which
// already accepts our normalized recipient/item shapes.
type ikonshopAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewIkonshopAdapter creates the Ikonshop order adapter
func NewIkonshopAdapter(cfg config.IkonshopConfig, logger *zap.Logger) *ikonshopAdapter {
	return &ikonshopAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *ikonshopAdapter) Name() string { return domain.ProviderIkonshop }

type ikonshopOrderRequest struct {
	ExternalID string         `json:"external_id"`
	Recipient  domain.Address `json:"recipient"`
	Items      []OrderItem    `json:"items"`
}

type ikonshopOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (a *ikonshopAdapter) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if a.baseURL == "" {
		return nil, &errors.ErrNotConfigured{Feature: "ikonshop"}
	}

	body := ikonshopOrderRequest{
		ExternalID: req.ExternalID,
		Recipient:  req.Recipient,
		Items:      req.Items,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("X-API-Key", a.apiKey)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Warn("Ikonshop request failed", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: domain.ProviderIkonshop, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrProvider{Provider: domain.ProviderIkonshop, StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}

	var parsed ikonshopOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.ProviderIkonshop, StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	return &OrderResult{
		Success:    true,
		Provider:   domain.ProviderIkonshop,
		PODOrderID: parsed.OrderID,
		Status:     parsed.Status,
		Raw:        rawMap,
	}, nil
}
