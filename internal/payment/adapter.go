package payment

import (
	"context"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
)

// InitRequest is the normalized payment-initialization payload
type InitRequest struct {
	Reference string
	Email     string
	Amount    float64 // major units of Currency
	Currency  string
	OrderID   string
	Metadata  map[string]interface{}
}

// InitResult is the normalized outcome of initializing a payment. PaymentURL
// is where the customer completes the payment; for crypto it is empty and
// Extra carries the receive address and expected amount instead.
type InitResult struct {
	Provider   string
	Reference  string
	PaymentURL string
	Extra      map[string]interface{}
}

// VerifyResult is the normalized outcome of verifying a payment. Status is
// one of the domain payment statuses regardless of provider vocabulary.
type VerifyResult struct {
	Provider  string
	Reference string
	Status    string
	Amount    float64
	Currency  string
	Raw       map[string]interface{}
}

// Provider initializes and verifies payments against one gateway. Providers
// normalize gateway-specific statuses into the domain vocabulary; callers
// never see "ABANDONED" vs "abandoned" vs "voided".
type Provider interface {
	Name() string
	Initialize(ctx context.Context, req InitRequest) (*InitResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// normalizeStatus folds the gateway status vocabularies into ours
func normalizeStatus(raw string) string {
	switch raw {
	case "success", "successful", "completed":
		return domain.PaymentStatusSuccess
	case "failed", "error", "declined":
		return domain.PaymentStatusFailed
	case "cancelled", "canceled", "voided":
		return domain.PaymentStatusCancelled
	case "abandoned", "expired", "timeout":
		return domain.PaymentStatusAbandoned
	default:
		return domain.PaymentStatusPending
	}
}
