package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
)

// ErrTxFailed is returned when a mined transaction has a failed status
var ErrTxFailed = errors.New("transaction reverted")

// gas estimates are padded by this percentage
const gasHeadroomPercent = 20

// Writer signs and submits pool transactions for a wallet
type Writer struct {
	backend      Backend
	reader       *Reader
	wallet       *Wallet
	chainID      *big.Int
	pollInterval time.Duration

	comet *abi.ABI
	erc20 *abi.ABI
}

// NewWriter creates a writer. The backend's chain id must match expectedChainID.
func NewWriter(ctx context.Context, backend Backend, reader *Reader, wallet *Wallet, expectedChainID int64, pollInterval time.Duration) (*Writer, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if chainID.Int64() != expectedChainID {
		return nil, fmt.Errorf("rpc endpoint is on chain %s, expected %d", chainID, expectedChainID)
	}

	comet, err := CometABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse comet ABI: %w", err)
	}
	erc20, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &Writer{
		backend:      backend,
		reader:       reader,
		wallet:       wallet,
		chainID:      chainID,
		pollInterval: pollInterval,
		comet:        comet,
		erc20:        erc20,
	}, nil
}

// Allowance returns the wallet's allowance of token to the pool, in token units
func (w *Writer) Allowance(ctx context.Context, token models.Token) (decimal.Decimal, error) {
	return w.reader.Allowance(ctx, token)
}

// Approve lets the pool proxy transfer amount (smallest units) of token
func (w *Writer) Approve(ctx context.Context, token models.Token, amount *big.Int) (common.Hash, error) {
	data, err := w.erc20.Pack("approve", w.reader.Pool().Proxy, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve: %w", err)
	}
	hash, err := w.send(ctx, token.Address, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to approve %s: %w", token.Symbol, err)
	}
	logger.Tx("approve", "approve", token.Symbol, hash.Hex())
	return hash, nil
}

// Execute calls supply or withdraw on the pool for token and amount (smallest units)
func (w *Writer) Execute(ctx context.Context, operation string, token models.Token, amount *big.Int) (common.Hash, error) {
	if operation != "supply" && operation != "withdraw" {
		return common.Hash{}, fmt.Errorf("unsupported pool operation %q", operation)
	}
	data, err := w.comet.Pack(operation, token.Address, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack %s: %w", operation, err)
	}
	hash, err := w.send(ctx, w.reader.Pool().Proxy, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to %s %s: %w", operation, token.Symbol, err)
	}
	logger.Tx("submitted", operation, token.Symbol, hash.Hex())
	return hash, nil
}

func (w *Writer) send(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	if !w.wallet.CanSign() {
		return common.Hash{}, ErrReadOnlyWallet
	}
	from := w.wallet.Address()

	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas += gas * gasHeadroomPercent / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.wallet.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed.Hash(), nil
}

// WaitMined polls for the receipt of hash until it is mined or ctx is done.
// A mined transaction with a failed status returns ErrTxFailed.
func (w *Writer) WaitMined(ctx context.Context, hash common.Hash) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s", ErrTxFailed, hash.Hex())
			}
			logger.Debug("Transaction %s mined in block %s", hash.Hex(), receipt.BlockNumber)
			return nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return fmt.Errorf("failed to fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
