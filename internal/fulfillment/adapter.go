package fulfillment

import (
	"context"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// OrderRequest is the normalized order-creation payload handed to an adapter.
// Each adapter translates it into its target API's request shape.
type OrderRequest struct {
	ExternalID  string
	Recipient   domain.Address
	Items       []OrderItem
	RetailCosts *RetailCosts
}

// OrderItem is one normalized line bound for a single provider
type OrderItem struct {
	SKU        string
	Title      string
	Quantity   int
	UnitPrice  float64
	VariantID  *int64
	PreviewURL *string
}

// RetailCosts is the optional retail cost breakdown some providers accept
type RetailCosts struct {
	Currency string
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

// OrderResult is the normalized outcome of one create-order call. A failed
// call is terminal for that attempt; the caller records it and does not retry.
type OrderResult struct {
	Success    bool
	Provider   string
	PODOrderID string
	Status     string
	Raw        map[string]interface{}
}

// Adapter creates orders against one print-on-demand provider. Adapters do
// request/response shape translation only: HTTP-level failures come back as
// a typed error, never as a panic or an opaque wrapped response.
type Adapter interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}
