package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pricing = Pricing{
	Currency:              "NGN",
	TaxRate:               0.075,
	FlatShipping:          2500,
	FreeShippingThreshold: 50000,
}

func TestSetItemClampsQuantity(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", Title: "Tee", UnitPrice: 9000, Quantity: 500})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, MaxQuantityPerItem, items[0].Quantity)
}

func TestSetItemClampsToPerItemMax(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 20, MaxQuantity: 3})

	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestAddQuantityRespectsPerItemMax(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 2, MaxQuantity: 3})
	c.AddQuantity("PF-TEE-001", 10)

	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestPerItemMaxAboveGlobalCapIgnored(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 500, MaxQuantity: 100})

	// the global limit still wins when the per-item max is looser
	assert.Equal(t, MaxQuantityPerItem, c.Items()[0].Quantity)
}

func TestDeserializeReclampsToPerItemMax(t *testing.T) {
	payload := []byte(`{"version":1,"items":[
		{"sku":"PF-TEE-001","unit_price":9000,"quantity":15,"max_quantity":4}
	]}`)

	c, err := Deserialize(payload)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items()[0].Quantity)
}

func TestSetItemZeroQuantityRemoves(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 2})
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 0})

	assert.True(t, c.IsEmpty())
}

func TestAddQuantityRemovesAtZero(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 2})

	c.AddQuantity("PF-TEE-001", -1)
	require.Equal(t, 1, c.Items()[0].Quantity)

	c.AddQuantity("PF-TEE-001", -5)
	assert.True(t, c.IsEmpty())
}

func TestAddQuantityClampsHigh(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 19})
	c.AddQuantity("PF-TEE-001", 10)

	assert.Equal(t, MaxQuantityPerItem, c.Items()[0].Quantity)
}

func TestRemoveAbsentSKUIsNoop(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 9000, Quantity: 1})
	c.Remove("PY-MUG-001")

	assert.Equal(t, 1, c.Len())
}

func TestTotalsBelowFreeShippingThreshold(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 15000, Quantity: 3}) // 45000

	totals := c.Totals(pricing)
	assert.Equal(t, 45000.0, totals.Subtotal)
	assert.Equal(t, 3375.0, totals.Tax)
	assert.Equal(t, 2500.0, totals.Shipping)
	assert.Equal(t, 50875.0, totals.Total)
	assert.Equal(t, 5000.0, totals.AmountToFreeShipping)
}

func TestTotalsAtFreeShippingThreshold(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", UnitPrice: 10000, Quantity: 5}) // exactly 50000

	totals := c.Totals(pricing)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.Equal(t, 0.0, totals.AmountToFreeShipping)
	assert.Equal(t, 50000.0+3750.0, totals.Total)
}

func TestTotalsEmptyCart(t *testing.T) {
	totals := New().Totals(pricing)
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.Equal(t, 0.0, totals.Total)
	assert.Equal(t, 0.0, totals.AmountToFreeShipping)
}

func TestSerializeRoundTrip(t *testing.T) {
	c := New()
	c.SetItem(Item{SKU: "PF-TEE-001", Title: "Tee", UnitPrice: 9000, Quantity: 2})
	c.SetItem(Item{SKU: "PY-MUG-001", Title: "Mug", UnitPrice: 4500, Quantity: 1})

	data, err := c.Serialize()
	require.NoError(t, err)

	restored, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, c.Items(), restored.Items())
}

func TestDeserializeReclampsTamperedQuantities(t *testing.T) {
	payload := []byte(`{"version":1,"items":[
		{"sku":"PF-TEE-001","unit_price":9000,"quantity":9999},
		{"sku":"PY-MUG-001","unit_price":4500,"quantity":-3}
	]}`)

	c, err := Deserialize(payload)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, MaxQuantityPerItem, c.Items()[0].Quantity)
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := Deserialize([]byte("not json"))
	assert.Error(t, err)
}
