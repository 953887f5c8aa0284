// Package action models what the user can do to one asset of a pool: the
// four kinds of action, the amount they type and the limits and
// projections shown while they type it.
package action

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the mode of the modal
type Kind int

const (
	BaseSupply Kind = iota
	BaseBorrow
	Supply
	Withdraw
)

// Balances are the figures the max value and the stats column depend on.
// Token amounts are in units of the asset the action is for.
type Balances struct {
	WalletBalance     decimal.NullDecimal
	BaseSupply        decimal.Decimal
	BaseBorrow        decimal.Decimal
	AvailableToBorrow decimal.Decimal
	CollateralSupply  decimal.NullDecimal

	SupplyAPR            decimal.Decimal
	BorrowAPR            decimal.Decimal
	AvailableToBorrowUSD decimal.Decimal
	BorrowUSD            decimal.Decimal
	CollateralPrice      decimal.Decimal
}

// supplying reports whether a base-supply action adds to the supply
// balance rather than repaying a borrow
func (b Balances) supplying() bool {
	return b.BaseSupply.IsPositive() || b.BaseBorrow.IsZero()
}

// borrowing reports whether a base-borrow action adds to the borrow
// balance rather than withdrawing supply
func (b Balances) borrowing() bool {
	return b.BaseBorrow.IsPositive() || b.BaseSupply.IsZero()
}

type rule struct {
	name      string
	operation string
	base      bool
	label     func(Balances) string
	max       func(Balances) decimal.NullDecimal
	project   func(Balances, decimal.Decimal) []Row
}

var rules = map[Kind]rule{
	BaseSupply: {
		name:      "base-supply",
		operation: "supply",
		base:      true,
		label: func(b Balances) string {
			if b.supplying() {
				return "Supply"
			}
			return "Repay"
		},
		max: func(b Balances) decimal.NullDecimal {
			if b.supplying() {
				return b.WalletBalance
			}
			return known(b.BaseBorrow)
		},
		project: projectBaseSupply,
	},
	BaseBorrow: {
		name:      "base-borrow",
		operation: "withdraw",
		base:      true,
		label: func(b Balances) string {
			if b.borrowing() {
				return "Borrow"
			}
			return "Withdraw"
		},
		max: func(b Balances) decimal.NullDecimal {
			if b.borrowing() {
				return known(decimal.Max(b.AvailableToBorrow, decimal.Zero))
			}
			return known(b.BaseSupply)
		},
		project: projectBaseBorrow,
	},
	Supply: {
		name:      "supply",
		operation: "supply",
		label:     func(Balances) string { return "Supply" },
		max:       func(b Balances) decimal.NullDecimal { return b.WalletBalance },
		project:   projectCollateral(1),
	},
	Withdraw: {
		name:      "withdraw",
		operation: "withdraw",
		label:     func(Balances) string { return "Withdraw" },
		max:       func(b Balances) decimal.NullDecimal { return b.CollateralSupply },
		project:   projectCollateral(-1),
	},
}

func (k Kind) rule() rule {
	r, ok := rules[k]
	if !ok {
		panic(fmt.Sprintf("action: unknown kind %d", int(k)))
	}
	return r
}

func (k Kind) String() string {
	if r, ok := rules[k]; ok {
		return r.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Operation is the pool contract function the kind calls
func (k Kind) Operation() string {
	return k.rule().operation
}

// SupplyType reports whether the operation transfers tokens from the
// wallet into the pool and so needs an allowance
func (k Kind) SupplyType() bool {
	return k.rule().operation == "supply"
}

// IsBase reports whether the kind acts on the base asset
func (k Kind) IsBase() bool {
	return k.rule().base
}

// Label is the tab title. Base kinds are relabelled when they would
// actually repay or withdraw.
func Label(k Kind, b Balances) string {
	return k.rule().label(b)
}

// MaxValue is the largest amount the "max" shortcut fills in. It is
// absent while the balance it depends on has not loaded.
func MaxValue(k Kind, b Balances) decimal.NullDecimal {
	return k.rule().max(b)
}

// KindsFor returns the tabs available for the base asset or a collateral
func KindsFor(base bool) []Kind {
	if base {
		return []Kind{BaseSupply, BaseBorrow}
	}
	return []Kind{Supply, Withdraw}
}

// ParseKind accepts the kind names and the CLI verbs borrow and repay
func ParseKind(s string, base bool) (Kind, error) {
	switch strings.ToLower(s) {
	case "supply":
		if base {
			return BaseSupply, nil
		}
		return Supply, nil
	case "repay":
		if base {
			return BaseSupply, nil
		}
	case "borrow":
		if base {
			return BaseBorrow, nil
		}
	case "withdraw":
		if base {
			return BaseBorrow, nil
		}
		return Withdraw, nil
	case "base-supply":
		return BaseSupply, nil
	case "base-borrow":
		return BaseBorrow, nil
	}
	return 0, fmt.Errorf("%q is not a valid action for a %s asset", s, assetKind(base))
}

func assetKind(base bool) string {
	if base {
		return "base"
	}
	return "collateral"
}

func known(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
