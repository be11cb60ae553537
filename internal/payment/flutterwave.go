package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// flutterwaveProvider handles bank-transfer payments via Flutterwave.
// Amounts are in major units, unlike Paystack.
type flutterwaveProvider struct {
	secretKey   string
	baseURL     string
	redirectURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewFlutterwaveProvider creates the Flutterwave payment provider
func NewFlutterwaveProvider(cfg config.FlutterwaveConfig, logger *zap.Logger) *flutterwaveProvider {
	return &flutterwaveProvider{
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		redirectURL: cfg.RedirectURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

func (p *flutterwaveProvider) Name() string { return domain.PaymentProviderFlutterwave }

type flutterwaveInitRequest struct {
	TxRef          string                 `json:"tx_ref"`
	Amount         string                 `json:"amount"`
	Currency       string                 `json:"currency"`
	RedirectURL    string                 `json:"redirect_url,omitempty"`
	PaymentOptions string                 `json:"payment_options"`
	Customer       map[string]string      `json:"customer"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
}

type flutterwaveInitResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

type flutterwaveVerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status   string  `json:"status"`
		TxRef    string  `json:"tx_ref"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

func (p *flutterwaveProvider) Initialize(ctx context.Context, req InitRequest) (*InitResult, error) {
	if p.secretKey == "" {
		return nil, &errors.ErrNotConfigured{Feature: "flutterwave"}
	}

	body := flutterwaveInitRequest{
		TxRef:          req.Reference,
		Amount:         fmt.Sprintf("%.2f", req.Amount),
		Currency:       req.Currency,
		RedirectURL:    p.redirectURL,
		PaymentOptions: "banktransfer",
		Customer:       map[string]string{"email": req.Email},
		Meta:           req.Metadata,
	}

	raw, err := p.call(ctx, http.MethodPost, "/payments", body)
	if err != nil {
		return nil, err
	}

	var resp flutterwaveInitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderFlutterwave, Body: string(raw)}
	}
	if resp.Status != "success" {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderFlutterwave, Body: resp.Message}
	}

	return &InitResult{
		Provider:   domain.PaymentProviderFlutterwave,
		Reference:  req.Reference,
		PaymentURL: resp.Data.Link,
	}, nil
}

func (p *flutterwaveProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if p.secretKey == "" {
		return nil, &errors.ErrNotConfigured{Feature: "flutterwave"}
	}

	raw, err := p.call(ctx, http.MethodGet, "/transactions/verify_by_reference?tx_ref="+reference, nil)
	if err != nil {
		return nil, err
	}

	var resp flutterwaveVerifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderFlutterwave, Body: string(raw)}
	}

	var rawMap map[string]interface{}
	_ = json.Unmarshal(raw, &rawMap)

	return &VerifyResult{
		Provider:  domain.PaymentProviderFlutterwave,
		Reference: reference,
		Status:    normalizeStatus(resp.Data.Status),
		Amount:    resp.Data.Amount,
		Currency:  resp.Data.Currency,
		Raw:       rawMap,
	}, nil
}

func (p *flutterwaveProvider) call(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
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
		p.logger.Warn("Flutterwave request failed", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderFlutterwave, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderFlutterwave, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
