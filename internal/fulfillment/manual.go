package fulfillment

import (
	"context"
)

// manualAdapter covers "manual" and "local_print": fulfillment happens
// offline, so dispatch only records the handoff and never calls out.
type manualAdapter struct {
	name string
}

// NewManualAdapter creates a no-call adapter for an offline provider name
func NewManualAdapter(name string) *manualAdapter {
	return &manualAdapter{name: name}
}

func (a *manualAdapter) Name() string { return a.name }

func (a *manualAdapter) CreateOrder(_ context.Context, req OrderRequest) (*OrderResult, error) {
	return &OrderResult{
		Success:  true,
		Provider: a.name,
		Status:   "queued_for_" + a.name,
		Raw: map[string]interface{}{
			"external_id": req.ExternalID,
			"items":       len(req.Items),
		},
	}, nil
}
