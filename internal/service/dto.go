package service

import (
	"strings"
	"time"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// WebhookOrderPayload is the Shopify orders/create webhook body, reduced to
// the fields order ingestion consumes
type WebhookOrderPayload struct {
	ID              int64                  `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	Currency        string                 `json:"currency"`
	TotalPrice      string                 `json:"total_price"`
	SubtotalPrice   string                 `json:"subtotal_price"`
	TotalTax        string                 `json:"total_tax"`
	Tags            string                 `json:"tags"` // comma-separated
	ShippingAddress *WebhookAddress        `json:"shipping_address"`
	BillingAddress  *WebhookAddress        `json:"billing_address"`
	Customer        *WebhookCustomer       `json:"customer"`
	LineItems       []WebhookLineItem      `json:"line_items"`
	NoteAttributes  []WebhookNoteAttribute `json:"note_attributes"`
}

// WebhookAddress is an address block inside a webhook payload
type WebhookAddress struct {
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

// ToDomain converts a webhook address to the domain shape
func (a *WebhookAddress) ToDomain() domain.Address {
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

// WebhookCustomer carries the customer's default address, the fallback when
// the order has no shipping address
type WebhookCustomer struct {
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DefaultAddress *WebhookAddress `json:"default_address"`
}

// WebhookLineItem is one order line inside a webhook payload
type WebhookLineItem struct {
	ID           int64                 `json:"id"`
	Title        string                `json:"title"`
	VariantTitle string                `json:"variant_title"`
	SKU          string                `json:"sku"`
	Quantity     int                   `json:"quantity"`
	Price        string                `json:"price"`
	VariantID    *int64                `json:"variant_id"`
	ProductID    *int64                `json:"product_id"`
	Properties   []WebhookItemProperty `json:"properties"`
}

// WebhookItemProperty is a custom line item property; _preview_url carries
// the customer's design preview
type WebhookItemProperty struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// WebhookNoteAttribute is an order-level note attribute
type WebhookNoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SplitTags normalizes Shopify's comma-separated tag string
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}

// CheckoutRequest is the storefront checkout payload
type CheckoutRequest struct {
	Email           string           `json:"email" binding:"required,email"`
	Phone           string           `json:"phone"`
	PaymentMethod   string           `json:"payment_method" binding:"required"`
	Currency        string           `json:"currency"`
	ShippingAddress CheckoutAddress  `json:"shipping_address" binding:"required"`
	BillingAddress  *CheckoutAddress `json:"billing_address"`
	Items           []CheckoutItem   `json:"items" binding:"required,min=1"`
}

// CheckoutAddress is an address in a checkout payload
type CheckoutAddress struct {
	Name        string `json:"name" binding:"required"`
	Address1    string `json:"address1" binding:"required"`
	Address2    string `json:"address2"`
	City        string `json:"city" binding:"required"`
	Province    string `json:"province"`
	Country     string `json:"country" binding:"required"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone"`
}

// ToDomain converts a checkout address to the domain shape
func (a *CheckoutAddress) ToDomain() domain.Address {
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

// CheckoutItem is one cart line submitted at checkout. Prices are re-read
// from the catalog server-side; the client-sent price is ignored.
type CheckoutItem struct {
	SKU        string `json:"sku" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	PreviewURL string `json:"preview_url"`
}

// CheckoutResponse is returned after payment initialization
type CheckoutResponse struct {
	OrderID     string                 `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	Reference   string                 `json:"reference"`
	PaymentURL  string                 `json:"payment_url,omitempty"`
	Provider    string                 `json:"provider"`
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// VerifyResponse is returned from payment verification
type VerifyResponse struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	OrderID     string `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}

// FulfillRequest is the admin single-order fulfill payload
type FulfillRequest struct {
	// Provider optionally forces every line to one provider, bypassing
	// per-item resolution
	Provider string `json:"provider"`
}

// FulfillResult reports one order's dispatch outcome
type FulfillResult struct {
	OrderID   string   `json:"order_id"`
	Success   bool     `json:"success"`
	Providers []string `json:"providers,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// BulkFulfillRequest is the admin bulk fulfill payload
type BulkFulfillRequest struct {
	OrderIDs []string `json:"order_ids" binding:"required,min=1"`
	Provider string   `json:"provider"`
}

// TrackingRequest assigns tracking to an order
type TrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	Carrier        string `json:"carrier"`
}

// NotesRequest updates an order's admin notes
type NotesRequest struct {
	Notes string `json:"notes"`
}

// OrderDetail is the admin order view with line items and dispatch history
type OrderDetail struct {
	Order    *domain.Order                `json:"order"`
	Items    []*domain.LineItem           `json:"items"`
	Attempts []*domain.FulfillmentAttempt `json:"attempts"`
}

// CurrencyRequest upserts a display currency
type CurrencyRequest struct {
	Code           string `json:"code" binding:"required,len=3"`
	Symbol         string `json:"symbol" binding:"required"`
	SymbolPosition string `json:"symbol_position"`
	DecimalPlaces  int    `json:"decimal_places"`
	IsActive       bool   `json:"is_active"`
	IsDefault      bool   `json:"is_default"`
}

// LanguageRequest upserts a storefront language
type LanguageRequest struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	NativeName string `json:"native_name"`
	RTL        bool   `json:"rtl"`
	IsActive   bool   `json:"is_active"`
	IsDefault  bool   `json:"is_default"`
}

// RateRequest upserts a directional exchange rate
type RateRequest struct {
	FromCode string  `json:"from_code" binding:"required,len=3"`
	ToCode   string  `json:"to_code" binding:"required,len=3"`
	Rate     float64 `json:"rate" binding:"required,gt=0"`
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}
