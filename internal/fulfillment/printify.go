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

type printifyAdapter struct {
	baseURL    string
	apiKey     string
	shopID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPrintifyAdapter creates the Printify order adapter
func NewPrintifyAdapter(cfg config.PrintifyConfig, logger *zap.Logger) *printifyAdapter {
	return &printifyAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		shopID:     cfg.ShopID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *printifyAdapter) Name() string { return domain.ProviderPrintify }

type printifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip,omitempty"`
}

type printifyLineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type printifyOrderRequest struct {
	ExternalID               string             `json:"external_id"`
	Label                    string             `json:"label,omitempty"`
	LineItems                []printifyLineItem `json:"line_items"`
	ShippingMethod           int                `json:"shipping_method"`
	SendShippingNotification bool               `json:"send_shipping_notification"`
	AddressTo                printifyAddress    `json:"address_to"`
}

type printifyOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (a *printifyAdapter) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if a.apiKey == "" || a.shopID == "" {
		return nil, &errors.ErrNotConfigured{Feature: "printify"}
	}

	first, last := splitName(req.Recipient.Name)
	country := req.Recipient.CountryCode
	if country == "" {
		country = req.Recipient.Country
	}
	body := printifyOrderRequest{
		ExternalID:     req.ExternalID,
		ShippingMethod: 1,
		AddressTo: printifyAddress{
			FirstName: first,
			LastName:  last,
			Phone:     req.Recipient.Phone,
			Country:   country,
			Region:    req.Recipient.Province,
			Address1:  req.Recipient.Address1,
			Address2:  req.Recipient.Address2,
			City:      req.Recipient.City,
			Zip:       req.Recipient.Zip,
		},
	}
	for _, item := range req.Items {
		body.LineItems = append(body.LineItems, printifyLineItem{
			SKU:      item.SKU,
			Quantity: item.Quantity,
		})
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/shops/%s/orders.json", a.baseURL, a.shopID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Warn("Printify request failed", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: domain.ProviderPrintify, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrProvider{Provider: domain.ProviderPrintify, StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}

	var parsed printifyOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.ProviderPrintify, StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	return &OrderResult{
		Success:    true,
		Provider:   domain.ProviderPrintify,
		PODOrderID: parsed.ID,
		Status:     parsed.Status,
		Raw:        rawMap,
	}, nil
}

// splitName splits a full name into first/last for providers that require
// them separately
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
