package tx

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/chain"
	"github.com/kelsos/comet-dash/internal/testutil"
)

func TestSubmitThroughWriter(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	pool := testutil.Pool()

	wallet, err := chain.NewWallet(testutil.TestKeyHex, "")
	require.NoError(t, err)
	reader, err := chain.NewReader(backend, pool, wallet.Address(), 0)
	require.NoError(t, err)
	writer, err := chain.NewWriter(context.Background(), backend, reader, wallet, 1, time.Millisecond)
	require.NoError(t, err)

	erc20, err := chain.ERC20ABI()
	require.NoError(t, err)
	comet, err := chain.CometABI()
	require.NoError(t, err)
	backend.SetCall(pool.BaseToken.Address, erc20, "allowance", big.NewInt(0))

	var states []State
	reloads, closes := 0, 0
	flow := NewFlow(writer, Options{
		Reload:   func() { reloads++ },
		Close:    func() { closes++ },
		Observer: func(s State, _ string) { states = append(states, s) },
	})

	result, err := flow.Submit(context.Background(), Request{
		Kind:   action.BaseSupply,
		Token:  pool.BaseToken.Token,
		Amount: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, []State{ApproveExecuting, ApproveInProgress, WaitingForTransactions, NoAction}, states)
	assert.Equal(t, 1, reloads)
	assert.Equal(t, 1, closes)
	require.Len(t, backend.Sent, 2)

	approval := backend.Sent[0]
	assert.Equal(t, result.ApproveHash, approval.Hash())
	assert.Equal(t, pool.BaseToken.Address, *approval.To())
	method, err := erc20.MethodById(approval.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "approve", method.Name)
	args, err := method.Inputs.Unpack(approval.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, pool.Proxy, args[0].(common.Address))
	assert.Equal(t, "10000000", args[1].(*big.Int).String())

	supply := backend.Sent[1]
	assert.Equal(t, result.Hash, supply.Hash())
	assert.Equal(t, pool.Proxy, *supply.To())
	method, err = comet.MethodById(supply.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "supply", method.Name)
	args, err = method.Inputs.Unpack(supply.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, pool.BaseToken.Address, args[0].(common.Address))
	assert.Equal(t, "10000000", args[1].(*big.Int).String())
}
