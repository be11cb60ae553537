package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// Reference prefixes identify the provider so verification can route without
// a lookup. They are part of the stored reference, not stripped.
const (
	refPrefixPaystack    = "psk_"
	refPrefixFlutterwave = "flw_"
	refPrefixCrypto      = "eth_"
)

// Router maps payment methods to providers and routes verification by
// reference prefix. Method -> provider is fixed: card -> Paystack,
// bank_transfer -> Flutterwave, crypto -> on-chain.
type Router struct {
	providers map[string]Provider
	byPrefix  map[string]Provider
	logger    *zap.Logger
}

// NewRouter builds the payment router from configuration. Unconfigured
// providers are not registered, so their methods fail with a typed
// not-configured error at initialization time.
func NewRouter(cfg *config.Config, logger *zap.Logger) *Router {
	r := &Router{
		providers: make(map[string]Provider),
		byPrefix:  make(map[string]Provider),
		logger:    logger,
	}

	if cfg.Paystack.Configured() {
		r.register(NewPaystackProvider(cfg.Paystack, logger), refPrefixPaystack)
	}
	if cfg.Flutterwave.Configured() {
		r.register(NewFlutterwaveProvider(cfg.Flutterwave, logger), refPrefixFlutterwave)
	}
	if cfg.Crypto.Configured() {
		r.register(NewCryptoProvider(cfg.Crypto, logger), refPrefixCrypto)
	}

	return r
}

func (r *Router) register(p Provider, prefix string) {
	r.providers[p.Name()] = p
	r.byPrefix[prefix] = p
}

// providerForMethod maps a checkout payment method to its provider
func (r *Router) providerForMethod(method string) (Provider, string, error) {
	var name, prefix string
	switch method {
	case domain.PaymentMethodCard:
		name, prefix = domain.PaymentProviderPaystack, refPrefixPaystack
	case domain.PaymentMethodBankTransfer:
		name, prefix = domain.PaymentProviderFlutterwave, refPrefixFlutterwave
	case domain.PaymentMethodCrypto:
		name, prefix = domain.PaymentProviderCrypto, refPrefixCrypto
	default:
		return nil, "", &errors.ErrValidation{Message: fmt.Sprintf("unsupported payment method %q", method)}
	}

	p, ok := r.providers[name]
	if !ok {
		return nil, "", &errors.ErrNotConfigured{Feature: name + " payments"}
	}
	return p, prefix, nil
}

// NewReference generates a fresh prefixed reference for a payment method.
// References are unique per initialization, never reused across retries.
func (r *Router) NewReference(method string) (string, error) {
	_, prefix, err := r.providerForMethod(method)
	if err != nil {
		return "", err
	}
	return prefix + strings.ReplaceAll(uuid.New().String(), "-", ""), nil
}

// Initialize routes a payment initialization to the provider for the method.
// The request's Reference must come from NewReference.
func (r *Router) Initialize(ctx context.Context, method string, req InitRequest) (*InitResult, error) {
	p, _, err := r.providerForMethod(method)
	if err != nil {
		return nil, err
	}

	result, err := p.Initialize(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.PaymentsInitialized.WithLabelValues(p.Name()).Inc()

	r.logger.Info("Payment initialized",
		zap.String("provider", p.Name()),
		zap.String("reference", req.Reference),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency))
	return result, nil
}

// VerifyReference routes a verification call by the reference's provider
// prefix. Crypto references embed the transaction hash after the prefix.
func (r *Router) VerifyReference(ctx context.Context, reference string) (*VerifyResult, error) {
	for prefix, p := range r.byPrefix {
		if strings.HasPrefix(reference, prefix) {
			result, err := p.Verify(ctx, reference)
			if err != nil {
				return nil, err
			}
			metrics.PaymentsVerified.WithLabelValues(p.Name(), result.Status).Inc()
			return result, nil
		}
	}
	return nil, &errors.ErrValidation{Message: fmt.Sprintf("unrecognized payment reference %q", reference)}
}
