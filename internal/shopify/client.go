package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// Client talks to the Shopify Admin REST API. It exists for backfill: when a
// stored order is missing data the webhook did not carry (or the webhook was
// lost), admin actions re-fetch the order before dispatching.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a Shopify Admin API client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	return &Client{
		shopDomain:  cfg.ShopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// Configured reports whether the client can make calls
func (c *Client) Configured() bool {
	return c.shopDomain != "" && c.accessToken != ""
}

// Order is the subset of a Shopify order used for backfill
type Order struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Currency        string          `json:"currency"`
	TotalPrice      string          `json:"total_price"`
	SubtotalPrice   string          `json:"subtotal_price"`
	TotalTax        string          `json:"total_tax"`
	Tags            string          `json:"tags"`
	ShippingAddress *OrderAddress   `json:"shipping_address"`
	BillingAddress  *OrderAddress   `json:"billing_address"`
	LineItems       []OrderLineItem `json:"line_items"`
}

// OrderAddress is a Shopify order address
type OrderAddress struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone"`
}

// ToDomain converts a Shopify address to the domain shape
func (a *OrderAddress) ToDomain() domain.Address {
	if a == nil {
		return domain.Address{}
	}
	return domain.Address{
		Name:        a.Name,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		Province:    a.Province,
		Country:     a.Country,
		CountryCode: a.CountryCode,
		Zip:         a.Zip,
		Phone:       a.Phone,
	}
}

// OrderLineItem is a Shopify order line item
type OrderLineItem struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	VariantID    *int64 `json:"variant_id"`
	ProductID    *int64 `json:"product_id"`
}

// GetOrder fetches one order by its Shopify id
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if !c.Configured() {
		return nil, &errors.ErrNotConfigured{Feature: "shopify admin api"}
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/orders/%s.json", c.shopDomain, c.apiVersion, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Shopify request failed", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: "shopify", Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &errors.ErrNotFound{Resource: "shopify order", ID: orderID}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrProvider{Provider: "shopify", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var wrapper struct {
		Order Order `json:"order"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return &wrapper.Order, nil
}
