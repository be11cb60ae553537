package payment

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// weiPerEth for converting on-chain amounts to display units
var weiPerEth = new(big.Float).SetFloat64(1e18)

// cryptoProvider verifies on-chain payments against an Ethereum RPC node.
// Initialize hands the customer our receive address; Verify resolves a
// submitted transaction hash into a confirmed payment to that address.
type cryptoProvider struct {
	rpcURL         string
	receiveAddress common.Address
	logger         *zap.Logger

	// dial is swapped in tests to avoid a live RPC node
	dial func(ctx context.Context, rawurl string) (ethClient, error)
}

// ethClient is the slice of ethclient.Client the provider needs
type ethClient interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// NewCryptoProvider creates the on-chain payment provider
func NewCryptoProvider(cfg config.CryptoConfig, logger *zap.Logger) *cryptoProvider {
	return &cryptoProvider{
		rpcURL:         cfg.RPCURL,
		receiveAddress: common.HexToAddress(cfg.ReceiveAddress),
		logger:         logger,
		dial: func(ctx context.Context, rawurl string) (ethClient, error) {
			return ethclient.DialContext(ctx, rawurl)
		},
	}
}

func (p *cryptoProvider) Name() string { return domain.PaymentProviderCrypto }

// Initialize returns the receive address and expected amount; there is no
// hosted payment page for on-chain payments.
func (p *cryptoProvider) Initialize(_ context.Context, req InitRequest) (*InitResult, error) {
	if p.rpcURL == "" {
		return nil, &errors.ErrNotConfigured{Feature: "crypto payments"}
	}

	return &InitResult{
		Provider:  domain.PaymentProviderCrypto,
		Reference: req.Reference,
		Extra: map[string]interface{}{
			"receive_address": p.receiveAddress.Hex(),
			"amount":          req.Amount,
			"currency":        req.Currency,
		},
	}, nil
}

// Verify checks a transaction hash: the tx must be mined, successful, and
// sent to our receive address. The reference carries the hash after the
// "eth_" prefix.
func (p *cryptoProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if p.rpcURL == "" {
		return nil, &errors.ErrNotConfigured{Feature: "crypto payments"}
	}

	txHash := strings.TrimPrefix(reference, "eth_")
	if !strings.HasPrefix(txHash, "0x") || len(txHash) != 66 {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("invalid transaction hash %q", txHash)}
	}

	client, err := p.dial(ctx, p.rpcURL)
	if err != nil {
		p.logger.Warn("Failed to connect to RPC node", zap.Error(err))
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderCrypto, Body: err.Error()}
	}
	defer client.Close()

	hash := common.HexToHash(txHash)
	tx, pending, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderCrypto, Body: fmt.Sprintf("transaction lookup failed: %v", err)}
	}
	if pending {
		return &VerifyResult{
			Provider:  domain.PaymentProviderCrypto,
			Reference: reference,
			Status:    domain.PaymentStatusPending,
		}, nil
	}

	if tx.To() == nil || *tx.To() != p.receiveAddress {
		return &VerifyResult{
			Provider:  domain.PaymentProviderCrypto,
			Reference: reference,
			Status:    domain.PaymentStatusFailed,
			Raw:       map[string]interface{}{"reason": "transaction not addressed to store wallet"},
		}, nil
	}

	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, &errors.ErrProvider{Provider: domain.PaymentProviderCrypto, Body: fmt.Sprintf("receipt lookup failed: %v", err)}
	}

	status := domain.PaymentStatusFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		status = domain.PaymentStatusSuccess
	}

	amount, _ := new(big.Float).Quo(new(big.Float).SetInt(tx.Value()), weiPerEth).Float64()

	return &VerifyResult{
		Provider:  domain.PaymentProviderCrypto,
		Reference: reference,
		Status:    status,
		Amount:    amount,
		Currency:  "ETH",
		Raw: map[string]interface{}{
			"tx_hash":      txHash,
			"block_number": receipt.BlockNumber.String(),
			"to":           tx.To().Hex(),
			"value_wei":    tx.Value().String(),
		},
	}, nil
}
