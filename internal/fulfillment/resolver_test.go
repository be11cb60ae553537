package fulfillment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

func TestResolvePrefersItemProvider(t *testing.T) {
	products := &fakeProductRepo{bySKU: map[string]*domain.Product{
		"PF-TEE-001": {Metadata: map[string]interface{}{"fulfillment_provider": "printify"}},
	}}
	r := NewResolver(products, zap.NewNop())

	pinned := "ikonshop"
	got, err := r.Resolve(context.Background(), &domain.LineItem{SKU: "PF-TEE-001", Provider: &pinned})
	require.NoError(t, err)
	assert.Equal(t, "ikonshop", got)
}

func TestResolveUsesProductMetadataHint(t *testing.T) {
	products := &fakeProductRepo{bySKU: map[string]*domain.Product{
		"CUSTOM-HOODIE": {Metadata: map[string]interface{}{"fulfillment_provider": "printify"}},
	}}
	r := NewResolver(products, zap.NewNop())

	got, err := r.Resolve(context.Background(), &domain.LineItem{SKU: "CUSTOM-HOODIE"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPrintify, got)
}

func TestResolveFallsBackToSKUPrefix(t *testing.T) {
	r := NewResolver(&fakeProductRepo{bySKU: map[string]*domain.Product{}}, zap.NewNop())

	tests := map[string]string{
		"PF-TEE-001": domain.ProviderPrintful,
		"py-mug-001": domain.ProviderPrintify,
		"IK-ART-009": domain.ProviderIkonshop,
	}
	for sku, want := range tests {
		got, err := r.Resolve(context.Background(), &domain.LineItem{SKU: sku})
		require.NoError(t, err, sku)
		assert.Equal(t, want, got, sku)
	}
}

func TestResolveUnknownProviderFails(t *testing.T) {
	r := NewResolver(&fakeProductRepo{bySKU: map[string]*domain.Product{}}, zap.NewNop())

	_, err := r.Resolve(context.Background(), &domain.LineItem{SKU: "ZZ-UNKNOWN"})
	assert.Error(t, err)

	_, err = r.Resolve(context.Background(), &domain.LineItem{})
	assert.Error(t, err)
}
