package tui

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kelsos/comet-dash/internal/action"
)

var printer = message.NewPrinter(language.English)

func usd(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// tokenAmount truncates to 4 places so balances never round up
func tokenAmount(d decimal.Decimal, symbol string) string {
	f, _ := d.Truncate(4).Float64()
	s := printer.Sprintf("%.4f", f)
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}

func formatRow(value decimal.Decimal, unit, symbol string) string {
	switch unit {
	case "USD":
		return usd(value)
	case "%":
		return percent(value)
	default:
		return tokenAmount(value, symbol)
	}
}

func rowText(row action.Row, symbol string) (current, projected string) {
	current = formatRow(row.Current, row.Unit, symbol)
	if row.Projected.Valid {
		projected = formatRow(row.Projected.Decimal, row.Unit, symbol)
	}
	return current, projected
}
