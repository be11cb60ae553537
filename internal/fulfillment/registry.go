package fulfillment

import (
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// Registry maps provider names to adapters. Adding a provider is a pure
// addition: register a new adapter, nothing else switches on provider names.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds the registry from configuration. Providers whose
// credentials are absent are simply not registered, so dispatch to them
// surfaces as an unknown-provider error rather than a crash.
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}

	if cfg.Printful.Configured() {
		r.Register(NewPrintfulAdapter(cfg.Printful, logger))
	}
	if cfg.Printify.Configured() {
		r.Register(NewPrintifyAdapter(cfg.Printify, logger))
	}
	if cfg.Ikonshop.Configured() {
		r.Register(NewIkonshopAdapter(cfg.Ikonshop, logger))
	}

	// Manual providers are always available: they only move status.
	r.Register(NewManualAdapter(domain.ProviderManual))
	r.Register(NewManualAdapter(domain.ProviderLocalPrint))

	return r
}

// Register adds an adapter under its name
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Get returns the adapter for a provider name
func (r *Registry) Get(provider string) (Adapter, bool) {
	a, ok := r.adapters[provider]
	return a, ok
}

// Providers lists the registered provider names
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
