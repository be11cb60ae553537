package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is a structured shipping or billing address
type Address struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province,omitempty"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// IsZero reports whether the address carries no usable destination
func (a Address) IsZero() bool {
	return a.Address1 == "" && a.City == "" && a.Country == ""
}

// Order is a paid (or payment-pending) storefront order. Orders are never
// hard-deleted; dispatch history lives in fulfillment_attempts.
type Order struct {
	ID                  uuid.UUID
	OrderNumber         string
	ExternalOrderID     *string // Shopify order id, set for webhook-ingested orders
	Email               string
	Phone               string
	Subtotal            float64
	Tax                 float64
	Shipping            float64
	Total               float64
	Currency            string
	PaymentMethod       string
	PaymentProvider     *string
	PaymentReference    *string
	PaymentStatus       string
	ShippingAddress     Address
	BillingAddress      *Address // nil means billing == shipping
	FulfillmentProvider *string
	FulfillmentStatus   FulfillmentStatus
	TrackingNumber      *string
	TrackingCarrier     *string
	PODResponse         map[string]interface{} // raw provider response, JSONB
	AdminNotes          *string
	Tags                []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasTag reports whether the order carries the given tag (case-sensitive,
// tags are normalized on ingestion)
func (o *Order) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// LineItem is one line of an order. Provider is resolved from product
// metadata at dispatch time and stays nil until then.
type LineItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Title        string
	VariantTitle string
	SKU          string
	Quantity     int
	UnitPrice    float64
	VariantID    *int64
	ProductID    *int64
	PreviewURL   *string
	Provider     *string
	CreatedAt    time.Time
}

// FulfillmentAttempt is one row of the append-only dispatch log, keyed by the
// external order id so webhook-ingested and checkout orders share one history.
type FulfillmentAttempt struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ExternalOrderID string
	Provider        string
	Status          AttemptStatus
	PODOrderID      *string
	Detail          *string
	RawResponse     map[string]interface{} // JSONB
	CreatedAt       time.Time
}

// DispatchJob is the durable handoff between webhook acknowledgment and
// fulfillment dispatch. A process restart re-runs queued jobs instead of
// dropping them.
type DispatchJob struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    JobStatus
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payment is one initialized payment transaction. Reference is generated by
// us with a provider prefix (psk_, flw_, eth_) so verification can route by
// prefix when provider identity is not otherwise known.
type Payment struct {
	Reference string
	OrderID   uuid.UUID
	Provider  string
	Method    string
	Amount    float64
	Currency  string
	Status    string
	Raw       map[string]interface{} // JSONB
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is a catalog product with one or more variants
type Product struct {
	ID          uuid.UUID
	Handle      string
	Title       string
	Description string
	Images      []string
	Metadata    map[string]interface{} // JSONB, carries fulfillment_provider
	IsActive    bool
	Variants    []*Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FulfillmentProviderHint returns the provider name from product metadata,
// empty when none is set
func (p *Product) FulfillmentProviderHint() string {
	if p.Metadata == nil {
		return ""
	}
	if v, ok := p.Metadata["fulfillment_provider"].(string); ok {
		return v
	}
	return ""
}

// DefaultVariant returns the first in-stock variant, falling back to the
// first variant when everything is sold out
func (p *Product) DefaultVariant() *Variant {
	for _, v := range p.Variants {
		if v.InventoryQuantity > 0 {
			return v
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0]
	}
	return nil
}

// Variant is one purchasable variant of a product
type Variant struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	Title             string
	SKU               string
	Price             float64
	CompareAtPrice    *float64
	InventoryQuantity int
	Option1           *string
	Option2           *string
	Option3           *string
	Position          int
}

// Design is an uploaded print design shown in the editor gallery
type Design struct {
	ID         uuid.UUID
	Title      string
	PreviewURL string
	ProductID  *uuid.UUID
	CreatedAt  time.Time
}

// Currency is an admin-configurable display currency
type Currency struct {
	Code           string // 3-letter, unique
	Symbol         string
	SymbolPosition string // before | after
	DecimalPlaces  int
	IsActive       bool
	IsDefault      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Language is an admin-configurable storefront language
type Language struct {
	Code       string
	Name       string
	NativeName string
	RTL        bool
	IsActive   bool
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExchangeRate relates an ordered currency pair to a rate. Lookups are
// directional: A->B is stored separately from B->A.
type ExchangeRate struct {
	ID        uuid.UUID
	FromCode  string
	ToCode    string
	Rate      float64
	Source    string // manual | api
	UpdatedAt time.Time
}

// IdempotencyKey stores checkout idempotency information
type IdempotencyKey struct {
	Key         string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// WebhookDelivery records a processed webhook delivery for dedupe. Shopify
// may redeliver; a duplicate external order id enqueues nothing.
type WebhookDelivery struct {
	ExternalOrderID string
	ReceivedAt      time.Time
}
