package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// paystackProvider handles card payments via Paystack. Amounts cross the wire
// in kobo (minor units).
type paystackProvider struct {
	secretKey   string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewPaystackProvider creates the Paystack payment provider
func NewPaystackProvider(cfg config.PaystackConfig, logger *zap.Logger) *paystackProvider {
	return &paystackProvider{
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

func (p *paystackProvider) Name() string { return domain.PaymentProviderPaystack }

type paystackInitRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"` // kobo
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"` // kobo
		Currency  string `json:"currency"`
	} `json:"data"`
}

func (p *paystackProvider) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	if p.secretKey == "" {
		return nil, &errors.ErrNotConfigured{Feature: "paystack"}
	}

	body := paystackInitRequest{
		Email:       req.Email,
		Amount:      int64(math.Round(req.Amount * 100)),
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: p.callbackURL,
		Metadata:    req.Metadata,
	}

	raw, err := p.call(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var resp paystackInitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderPaystack, Body: string(raw)}
	}
	if !resp.Status {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderPaystack, Body: resp.Message}
	}

	return &InitResult{
		Provider:   domain.PaymentProviderPaystack,
		Reference:  req.Reference,
		PaymentURL: resp.Data.AuthorizationURL,
	}, nil
}

func (p *paystackProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if p.secretKey == "" {
		return nil, &errors.ErrNotConfigured{Feature: "paystack"}
	}

	raw, err := p.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var resp paystackVerifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderPaystack, Body: string(raw)}
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	return &VerifyResult{
		Provider:  domain.PaymentProviderPaystack,
		Reference: reference,
		Status:    normalizeStatus(resp.Data.Status),
		Amount:    float64(resp.Data.Amount) / 100,
		Currency:  resp.Data.Currency,
		Raw:       rawMap,
	}, nil
}

func (p *paystackProvider) call(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("Paystack request failed", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderPaystack, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderPaystack, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
