package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrExecutionReverted mimics the node error for a call with no configured response
var ErrExecutionReverted = errors.New("execution reverted")

type callKey struct {
	to       common.Address
	selector [4]byte
}

// FakeBackend implements chain.Backend in memory. eth_call responses are
// registered per (contract, method) as ABI-packed outputs; sent
// transactions are recorded and, with AutoMine, immediately get a receipt.
type FakeBackend struct {
	t  *testing.T
	mu sync.Mutex

	calls     map[callKey][]byte
	exact     map[string][]byte
	callErrs  map[callKey]error
	callCount map[callKey]int

	ChainIDValue *big.Int
	Nonce        uint64
	GasPrice     *big.Int
	Gas          uint64

	// SendErr is returned by SendTransaction when set
	SendErr error
	// SendErrAt fails only the n-th (1-based) SendTransaction
	SendErrAt int
	// AutoMine creates a receipt for every sent transaction
	AutoMine bool
	// MinedStatus is the status of auto-mined receipts
	MinedStatus uint64
	// OnSend is invoked for every accepted transaction
	OnSend func(tx *types.Transaction)

	Sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

// NewFakeBackend creates a backend on chain 1 that auto-mines successfully
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	return &FakeBackend{
		t:            t,
		calls:        make(map[callKey][]byte),
		exact:        make(map[string][]byte),
		callErrs:     make(map[callKey]error),
		callCount:    make(map[callKey]int),
		ChainIDValue: big.NewInt(1),
		GasPrice:     big.NewInt(1_000_000_000),
		Gas:          100_000,
		AutoMine:     true,
		MinedStatus:  types.ReceiptStatusSuccessful,
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func keyFor(to common.Address, method abi.Method) callKey {
	var selector [4]byte
	copy(selector[:], method.ID)
	return callKey{to: to, selector: selector}
}

// SetCall registers the return values of method on contract at address to
func (f *FakeBackend) SetCall(to common.Address, contract *abi.ABI, method string, outputs ...interface{}) {
	f.t.Helper()
	m, ok := contract.Methods[method]
	if !ok {
		f.t.Fatalf("unknown method %s", method)
	}
	data, err := m.Outputs.Pack(outputs...)
	if err != nil {
		f.t.Fatalf("packing %s outputs: %v", method, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := keyFor(to, m)
	f.calls[key] = data
	delete(f.callErrs, key)
}

// SetCallFor registers return values for one exact set of call arguments.
// It takes precedence over SetCall for the same method.
func (f *FakeBackend) SetCallFor(to common.Address, contract *abi.ABI, method string, args []interface{}, outputs ...interface{}) {
	f.t.Helper()
	input, err := contract.Pack(method, args...)
	if err != nil {
		f.t.Fatalf("packing %s inputs: %v", method, err)
	}
	data, err := contract.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		f.t.Fatalf("packing %s outputs: %v", method, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[exactKey(to, input)] = data
}

func exactKey(to common.Address, input []byte) string {
	return to.Hex() + common.Bytes2Hex(input)
}

// SetCallError makes method on contract at to fail with err
func (f *FakeBackend) SetCallError(to common.Address, contract *abi.ABI, method string, err error) {
	f.t.Helper()
	m, ok := contract.Methods[method]
	if !ok {
		f.t.Fatalf("unknown method %s", method)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.callErrs[keyFor(to, m)] = err
}

// CallCount returns how many times method on contract at to was called
func (f *FakeBackend) CallCount(to common.Address, contract *abi.ABI, method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount[keyFor(to, contract.Methods[method])]
}

// SentCount returns the number of transactions accepted so far
func (f *FakeBackend) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

// SetReceipt stores a receipt for hash
func (f *FakeBackend) SetReceipt(hash common.Hash, status uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[hash] = &types.Receipt{TxHash: hash, Status: status, BlockNumber: big.NewInt(1)}
}

func (f *FakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if call.To == nil || len(call.Data) < 4 {
		return nil, fmt.Errorf("malformed call")
	}
	var key callKey
	key.to = *call.To
	copy(key.selector[:], call.Data[:4])

	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount[key]++
	if err, ok := f.callErrs[key]; ok {
		return nil, err
	}
	if data, ok := f.exact[exactKey(key.to, call.Data)]; ok {
		return data, nil
	}
	data, ok := f.calls[key]
	if !ok {
		return nil, ErrExecutionReverted
	}
	return data, nil
}

func (f *FakeBackend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	return f.Gas, nil
}

func (f *FakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.GasPrice), nil
}

func (f *FakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Nonce, nil
}

func (f *FakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	if f.SendErr != nil || (f.SendErrAt > 0 && len(f.Sent)+1 == f.SendErrAt) {
		err := f.SendErr
		if err == nil {
			err = errors.New("send rejected")
		}
		f.mu.Unlock()
		return err
	}
	f.Sent = append(f.Sent, tx)
	f.Nonce++
	if f.AutoMine {
		f.receipts[tx.Hash()] = &types.Receipt{
			TxHash:      tx.Hash(),
			Status:      f.MinedStatus,
			BlockNumber: big.NewInt(int64(len(f.Sent))),
		}
	}
	onSend := f.OnSend
	f.mu.Unlock()

	if onSend != nil {
		onSend(tx)
	}
	return nil
}

func (f *FakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (f *FakeBackend) ChainID(_ context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.ChainIDValue), nil
}
