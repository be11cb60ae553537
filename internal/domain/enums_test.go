package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFulfillmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    FulfillmentStatus
		to      FulfillmentStatus
		allowed bool
	}{
		{FulfillmentStatusPending, FulfillmentStatusProcessing, true},
		{FulfillmentStatusPending, FulfillmentStatusShipped, true},
		{FulfillmentStatusPending, FulfillmentStatusFailed, true},
		{FulfillmentStatusPending, FulfillmentStatusDelivered, false},
		{FulfillmentStatusProcessing, FulfillmentStatusShipped, true},
		{FulfillmentStatusProcessing, FulfillmentStatusFailed, true},
		{FulfillmentStatusProcessing, FulfillmentStatusPending, false},
		{FulfillmentStatusShipped, FulfillmentStatusDelivered, true},
		{FulfillmentStatusShipped, FulfillmentStatusFailed, false},
		// admin retry of a failed dispatch
		{FulfillmentStatusFailed, FulfillmentStatusProcessing, true},
		{FulfillmentStatusFailed, FulfillmentStatusShipped, true},
		{FulfillmentStatusFailed, FulfillmentStatusPending, false},
		// delivered is terminal
		{FulfillmentStatusDelivered, FulfillmentStatusShipped, false},
		{FulfillmentStatusDelivered, FulfillmentStatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestFulfillmentStatusIsValid(t *testing.T) {
	assert.True(t, FulfillmentStatusPending.IsValid())
	assert.True(t, FulfillmentStatusDelivered.IsValid())
	assert.False(t, FulfillmentStatus("cancelled").IsValid())
	assert.False(t, FulfillmentStatus("").IsValid())
}

func TestOrderHasTag(t *testing.T) {
	order := &Order{Tags: []string{"manual-review", "vip"}}
	assert.True(t, order.HasTag(TagManualReview))
	assert.False(t, order.HasTag(TagPendingAdmin))
	assert.False(t, (&Order{}).HasTag(TagManualReview))
}

func TestProductFulfillmentProviderHint(t *testing.T) {
	p := &Product{Metadata: map[string]interface{}{"fulfillment_provider": "printify"}}
	assert.Equal(t, "printify", p.FulfillmentProviderHint())

	assert.Empty(t, (&Product{}).FulfillmentProviderHint())
	assert.Empty(t, (&Product{Metadata: map[string]interface{}{"fulfillment_provider": 7}}).FulfillmentProviderHint())
}

func TestProductDefaultVariant(t *testing.T) {
	soldOut := &Variant{SKU: "A", InventoryQuantity: 0}
	inStock := &Variant{SKU: "B", InventoryQuantity: 3}

	p := &Product{Variants: []*Variant{soldOut, inStock}}
	assert.Equal(t, inStock, p.DefaultVariant())

	allOut := &Product{Variants: []*Variant{soldOut}}
	assert.Equal(t, soldOut, allOut.DefaultVariant())

	assert.Nil(t, (&Product{}).DefaultVariant())
}
