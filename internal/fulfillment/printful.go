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

type printfulAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPrintfulAdapter creates the Printful order adapter
func NewPrintfulAdapter(cfg config.PrintfulConfig, logger *zap.Logger) *printfulAdapter {
	return &printfulAdapter{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (a *printfulAdapter) Name() string { return domain.ProviderPrintful }

type printfulRecipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateName   string `json:"state_name,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	CountryName string `json:"country_name,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type printfulItem struct {
	ExternalVariantID string             `json:"external_variant_id,omitempty"`
	SKU               string             `json:"sku,omitempty"`
	Name              string             `json:"name"`
	Quantity          int                `json:"quantity"`
	RetailPrice       string             `json:"retail_price,omitempty"`
	Files             []printfulItemFile `json:"files,omitempty"`
}

type printfulItemFile struct {
	URL string `json:"url"`
}

type printfulOrderRequest struct {
	ExternalID  string            `json:"external_id"`
	Recipient   printfulRecipient `json:"recipient"`
	Items       []printfulItem    `json:"items"`
	RetailCosts map[string]string `json:"retail_costs,omitempty"`
}

type printfulOrderResponse struct {
	Code   int `json:"code"`
	Result struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"result"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *printfulAdapter) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if a.apiKey == "" {
		return nil, &errors.ErrNotConfigured{Feature: "printful"}
	}

	body := printfulOrderRequest{
		ExternalID: req.ExternalID,
		Recipient: printfulRecipient{
			Name:        req.Recipient.Name,
			Address1:    req.Recipient.Address1,
			Address2:    req.Recipient.Address2,
			City:        req.Recipient.City,
			StateName:   req.Recipient.Province,
			CountryCode: req.Recipient.CountryCode,
			CountryName: req.Recipient.Country,
			Zip:         req.Recipient.Zip,
			Phone:       req.Recipient.Phone,
		},
	}
	for _, item := range req.Items {
		pi := printfulItem{
			SKU:         item.SKU,
			Name:        item.Title,
			Quantity:    item.Quantity,
			RetailPrice: fmt.Sprintf("%.2f", item.UnitPrice),
		}
		if item.VariantID != nil {
			pi.ExternalVariantID = fmt.Sprintf("%d", *item.VariantID)
		}
		if item.PreviewURL != nil && *item.PreviewURL != "" {
			pi.Files = []printfulItemFile{{URL: *item.PreviewURL}}
		}
		body.Items = append(body.Items, pi)
	}
	if req.RetailCosts != nil {
		body.RetailCosts = map[string]string{
			"currency": req.RetailCosts.Currency,
			"subtotal": fmt.Sprintf("%.2f", req.RetailCosts.Subtotal),
			"tax":      fmt.Sprintf("%.2f", req.RetailCosts.Tax),
			"shipping": fmt.Sprintf("%.2f", req.RetailCosts.Shipping),
			"total":    fmt.Sprintf("%.2f", req.RetailCosts.Total),
		}
	}

	raw, status, err := a.post(ctx, "/orders", body)
	if err != nil {
		return nil, err
	}

	var resp printfulOrderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.ProviderPrintful, StatusCode: status, Body: excerpt(raw)}
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	return &OrderResult{
		Success:    true,
		Provider:   domain.ProviderPrintful,
		PODOrderID: fmt.Sprintf("%d", resp.Result.ID),
		Status:     resp.Result.Status,
		Raw:        rawMap,
	}, nil
}

func (a *printfulAdapter) post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Printful request failed", zap.Error(err))
		return nil, 0, &errors.ErrProvider{Provider: domain.ProviderPrintful, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &errors.ErrProvider{Provider: domain.ProviderPrintful, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	return body, resp.StatusCode, nil
}

// excerpt truncates a provider response body for error messages and logs
func excerpt(body []byte) string {
	const max = 512
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
