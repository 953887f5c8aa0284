package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/kelsos/comet-dash/internal/action"
	"github.com/kelsos/comet-dash/internal/chain"
	"github.com/kelsos/comet-dash/internal/logger"
	"github.com/kelsos/comet-dash/internal/models"
)

var (
	// ErrInFlight is returned when Submit is called during a submission
	ErrInFlight = errors.New("a submission is already in progress")
	// ErrInvalidAmount is returned for zero, negative or over-precise amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

const (
	DefaultSettleDelay = 2 * time.Second
	DefaultCloseDelay  = time.Second
)

// Chain is the write side of the pool, implemented by chain.Writer
type Chain interface {
	Allowance(ctx context.Context, token models.Token) (decimal.Decimal, error)
	Approve(ctx context.Context, token models.Token, amount *big.Int) (common.Hash, error)
	Execute(ctx context.Context, operation string, token models.Token, amount *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) error
}

var _ Chain = (*chain.Writer)(nil)

// Observer is told about every state change. message is the formatted
// error in the Error state and empty otherwise.
type Observer func(state State, message string)

// Options configure a Flow. Zero delays are used as given; use
// DefaultSettleDelay and DefaultCloseDelay for the usual pauses.
type Options struct {
	// SettleDelay is waited after the operation is mined, before reloading
	SettleDelay time.Duration
	// CloseDelay is waited after reloading, before closing
	CloseDelay time.Duration
	Reload     func()
	Close      func()
	Observer   Observer
	// Sleep replaces the delay implementation in tests
	Sleep func(ctx context.Context, d time.Duration) error
}

// Request is one submission
type Request struct {
	Kind   action.Kind
	Token  models.Token
	Amount decimal.Decimal
}

// Result holds the hashes of the transactions a submission sent
type Result struct {
	ApproveHash common.Hash
	Approved    bool
	Hash        common.Hash
}

// Flow runs submissions for one modal session. It allows one submission
// at a time.
type Flow struct {
	chain Chain
	opts  Options

	mu       sync.Mutex
	state    State
	message  string
	inFlight bool
}

func NewFlow(c Chain, opts Options) *Flow {
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Flow{chain: c, opts: opts}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// State returns the current state and error message
func (f *Flow) State() (State, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.message
}

// InFlight reports whether a submission is running
func (f *Flow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Edit records an amount change. It clears an error or approval state
// left from an earlier attempt and is ignored while a submission runs.
func (f *Flow) Edit() {
	f.mu.Lock()
	if f.inFlight || f.state == NoAction {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	_ = f.fire(Edit, "")
}

func (f *Flow) fire(e Event, message string) error {
	f.mu.Lock()
	next, err := Transition(f.state, e)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = next
	f.message = message
	observer := f.opts.Observer
	f.mu.Unlock()

	logger.Debug("Submission state %s after %s", next, e)
	if observer != nil {
		observer(next, message)
	}
	return nil
}

// Submit approves when needed, runs the pool operation and waits for both
// to be mined. On success it pauses, fires the reload, pauses again and
// closes. Any failure moves the flow to Error with a formatted message.
func (f *Flow) Submit(ctx context.Context, req Request) (Result, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return Result{}, ErrInFlight
	}
	if f.state != NoAction {
		state := f.state
		f.mu.Unlock()
		return Result{}, fmt.Errorf("%w: Submit on %s", ErrIllegalTransition, state)
	}
	f.inFlight = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	result, err := f.run(ctx, req)
	if err != nil {
		message := FormatError(err)
		logger.Error("%s %s %s failed: %v", req.Kind.Operation(), req.Amount, req.Token.Symbol, err)
		if fireErr := f.fire(Fail, message); fireErr != nil {
			logger.Warn("Could not record failure: %v", fireErr)
		}
		return result, err
	}
	return result, nil
}

func (f *Flow) run(ctx context.Context, req Request) (Result, error) {
	var result Result

	if !req.Amount.IsPositive() {
		return result, ErrInvalidAmount
	}
	units, err := chain.ToUnits(req.Amount, req.Token.Decimals)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	operation := req.Kind.Operation()

	if req.Kind.SupplyType() {
		allowance, err := f.chain.Allowance(ctx, req.Token)
		if err != nil {
			return result, fmt.Errorf("failed to read allowance: %w", err)
		}

		if allowance.LessThan(req.Amount) {
			logger.Info("Allowance %s %s is below %s, approving", allowance, req.Token.Symbol, req.Amount)
			if err := f.fire(ApproveStart, ""); err != nil {
				return result, err
			}

			hash, err := f.chain.Approve(ctx, req.Token, units)
			if err != nil {
				return result, err
			}
			result.ApproveHash, result.Approved = hash, true

			if err := f.fire(ApproveSubmitted, ""); err != nil {
				return result, err
			}
			if err := f.chain.WaitMined(ctx, hash); err != nil {
				return result, fmt.Errorf("approval %s: %w", hash.Hex(), err)
			}
			logger.Tx("mined", "approve", req.Token.Symbol, hash.Hex())
		}
	}

	if err := f.fire(Submit, ""); err != nil {
		return result, err
	}
	hash, err := f.chain.Execute(ctx, operation, req.Token, units)
	if err != nil {
		return result, err
	}
	result.Hash = hash

	if err := f.chain.WaitMined(ctx, hash); err != nil {
		return result, fmt.Errorf("%s %s: %w", operation, hash.Hex(), err)
	}
	logger.Tx("mined", operation, req.Token.Symbol, hash.Hex())

	if err := f.opts.Sleep(ctx, f.opts.SettleDelay); err != nil {
		return result, err
	}
	if f.opts.Reload != nil {
		f.opts.Reload()
	}
	if err := f.opts.Sleep(ctx, f.opts.CloseDelay); err != nil {
		return result, err
	}
	if f.opts.Close != nil {
		f.opts.Close()
	}

	return result, f.fire(Complete, "")
}
