package action

import "github.com/shopspring/decimal"

// Row is one line of the stats column. Unit is a token symbol, "USD" or "%".
// Projected is set when the entered amount would change the value.
type Row struct {
	Label     string
	Unit      string
	Current   decimal.Decimal
	Projected decimal.NullDecimal
}

const unitUSD = "USD"

// Project returns the stats column rows for kind with amount entered.
// Token rows carry an empty Unit; the caller fills in the asset symbol.
func Project(k Kind, b Balances, amount decimal.Decimal) []Row {
	return k.rule().project(b, amount)
}

func changed(current, projected, amount decimal.Decimal) decimal.NullDecimal {
	if amount.IsZero() || current.Equal(projected) {
		return decimal.NullDecimal{}
	}
	return known(projected)
}

func projectBaseSupply(b Balances, amount decimal.Decimal) []Row {
	supply := Row{Label: "Supply Balance", Current: b.BaseSupply}
	borrow := Row{Label: "Borrow Balance", Current: b.BaseBorrow}
	if b.supplying() {
		supply.Projected = changed(b.BaseSupply, b.BaseSupply.Add(amount), amount)
	} else {
		borrow.Projected = changed(b.BaseBorrow, b.BaseBorrow.Sub(amount), amount)
	}
	return []Row{
		supply,
		{Label: "Supply APR", Unit: "%", Current: b.SupplyAPR},
		borrow,
		{Label: "Available to Borrow", Current: b.AvailableToBorrow},
	}
}

func projectBaseBorrow(b Balances, amount decimal.Decimal) []Row {
	borrow := Row{Label: "Borrow Balance", Current: b.BaseBorrow}
	supply := Row{Label: "Supply Balance", Current: b.BaseSupply}
	if b.borrowing() {
		borrow.Projected = changed(b.BaseBorrow, b.BaseBorrow.Add(amount), amount)
	} else {
		supply.Projected = changed(b.BaseSupply, b.BaseSupply.Sub(amount), amount)
	}
	return []Row{
		borrow,
		{Label: "Borrow APR", Unit: "%", Current: b.BorrowAPR},
		supply,
		{Label: "Available to Borrow", Current: b.AvailableToBorrow},
	}
}

// projectCollateral values the amount at the collateral price; sign is +1
// for supply and -1 for withdraw
func projectCollateral(sign int64) func(Balances, decimal.Decimal) []Row {
	return func(b Balances, amount decimal.Decimal) []Row {
		signed := amount.Mul(decimal.NewFromInt(sign))
		supply := b.CollateralSupply.Decimal
		availableUSD := decimal.Max(b.AvailableToBorrowUSD, decimal.Zero)

		return []Row{
			{
				Label:     "Supply Balance",
				Current:   supply,
				Projected: changed(supply, supply.Add(signed), amount),
			},
			{
				Label:     "Available to Borrow",
				Unit:      unitUSD,
				Current:   availableUSD,
				Projected: changed(availableUSD, availableUSD.Add(signed.Mul(b.CollateralPrice)), amount),
			},
			{Label: "Borrow Balance", Unit: unitUSD, Current: b.BorrowUSD},
		}
	}
}
