package cart

import (
	"encoding/json"
	"fmt"
	"math"
)

// MaxQuantityPerItem caps a single line's quantity; requests above it clamp
// down instead of erroring
const MaxQuantityPerItem = 20

// Item is one line in a cart, keyed by SKU
type Item struct {
	SKU       string  `json:"sku"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	// MaxQuantity caps this line below the global limit (stock on hand);
	// zero means only the global limit applies
	MaxQuantity int     `json:"max_quantity,omitempty"`
	VariantID   *int64  `json:"variant_id,omitempty"`
	PreviewURL  string  `json:"preview_url,omitempty"`
}

// maxQuantity is the effective cap for a line: the per-item limit when set
// and tighter, otherwise the global one
func (i Item) maxQuantity() int {
	if i.MaxQuantity > 0 && i.MaxQuantity < MaxQuantityPerItem {
		return i.MaxQuantity
	}
	return MaxQuantityPerItem
}

// Pricing carries the store-level settings cart math depends on
type Pricing struct {
	Currency              string
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShipping          float64
}

// Totals is the computed cost breakdown for a cart
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	// AmountToFreeShipping is how much more spend removes the shipping fee;
	// zero once the threshold is met
	AmountToFreeShipping float64 `json:"amount_to_free_shipping"`
}

// Cart is the explicit cart state container. All mutation goes through
// methods so the quantity invariant (1 <= qty <= MaxQuantityPerItem) holds
// everywhere; items never exist with a zero or negative quantity.
type Cart struct {
	items []Item
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// SetItem adds or replaces a line. Quantity is clamped into [1, max] where
// max is the line's effective cap; zero or negative removes the line.
func (c *Cart) SetItem(item Item) {
	if item.Quantity <= 0 {
		c.Remove(item.SKU)
		return
	}
	if max := item.maxQuantity(); item.Quantity > max {
		item.Quantity = max
	}
	for i, existing := range c.items {
		if existing.SKU == item.SKU {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// AddQuantity adjusts an existing line by delta, clamping the result. The
// line is removed when the result drops to zero or below.
func (c *Cart) AddQuantity(sku string, delta int) {
	for i, existing := range c.items {
		if existing.SKU == sku {
			existing.Quantity += delta
			if existing.Quantity <= 0 {
				c.Remove(sku)
				return
			}
			if max := existing.maxQuantity(); existing.Quantity > max {
				existing.Quantity = max
			}
			c.items[i] = existing
			return
		}
	}
}

// Remove deletes a line by SKU; removing an absent SKU is a no-op
func (c *Cart) Remove(sku string) {
	for i, existing := range c.items {
		if existing.SKU == sku {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines
func (c *Cart) Len() int { return len(c.items) }

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Totals computes the cost breakdown. Shipping is the flat rate below the
// free-shipping threshold and zero at or above it; tax applies to the
// subtotal only.
func (c *Cart) Totals(p Pricing) Totals {
	var subtotal float64
	for _, item := range c.items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	tax := round2(subtotal * p.TaxRate)

	shipping := p.FlatShipping
	remaining := 0.0
	if subtotal >= p.FreeShippingThreshold {
		shipping = 0
	} else {
		remaining = round2(p.FreeShippingThreshold - subtotal)
	}
	if c.IsEmpty() {
		shipping = 0
		remaining = 0
	}

	return Totals{
		Subtotal:             round2(subtotal),
		Tax:                  tax,
		Shipping:             shipping,
		Total:                round2(subtotal + tax + shipping),
		Currency:             p.Currency,
		AmountToFreeShipping: remaining,
	}
}

// cartState is the serialized shape; the version field lets the format
// evolve without breaking stored carts
type cartState struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// Serialize encodes the cart for storage (cookie, localStorage mirror,
// checkout payload)
func (c *Cart) Serialize() ([]byte, error) {
	return json.Marshal(cartState{Version: 1, Items: c.items})
}

// Deserialize restores a cart from its serialized form, re-applying the
// quantity clamp so tampered payloads cannot smuggle invalid quantities in
func Deserialize(data []byte) (*Cart, error) {
	var state cartState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	c := New()
	for _, item := range state.Items {
		c.SetItem(item)
	}
	return c, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
