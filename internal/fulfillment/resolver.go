package fulfillment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
)

// skuPrefixes maps SKU prefixes to providers for items whose product record
// carries no metadata hint (e.g. products created before the hint existed)
var skuPrefixes = map[string]string{
	"PF-": domain.ProviderPrintful,
	"PY-": domain.ProviderPrintify,
	"IK-": domain.ProviderIkonshop,
}

// Resolver determines the fulfillment provider for a line item from product
// metadata. Resolution must succeed before any POD call is attempted; an
// unresolvable item fails closed as an unknown-provider error.
type Resolver struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewResolver creates a provider resolver backed by the product catalog
func NewResolver(products repository.ProductRepository, logger *zap.Logger) *Resolver {
	return &Resolver{
		products: products,
		logger:   logger,
	}
}

// Resolve returns the provider name for a line item. Order of precedence:
// provider already stored on the item, product metadata hint, SKU prefix.
func (r *Resolver) Resolve(ctx context.Context, item *domain.LineItem) (string, error) {
	if item.Provider != nil && *item.Provider != "" {
		return *item.Provider, nil
	}

	if item.SKU != "" {
		product, err := r.products.GetBySKU(ctx, item.SKU)
		if err == nil {
			if hint := product.FulfillmentProviderHint(); hint != "" {
				return hint, nil
			}
		} else {
			r.logger.Debug("Provider resolution: product lookup failed",
				zap.String("sku", item.SKU), zap.Error(err))
		}

		upper := strings.ToUpper(item.SKU)
		for prefix, provider := range skuPrefixes {
			if strings.HasPrefix(upper, prefix) {
				return provider, nil
			}
		}
	}

	return "", fmt.Errorf("unknown provider for sku %q", item.SKU)
}
