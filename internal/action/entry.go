package action

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the scale of an entered amount. No token has more
// than 36 decimals, and larger scales make decimal arithmetic expensive.
const maxExponent = 80

// Entry is the amount text field of one modal session
type Entry struct {
	text   string
	amount decimal.Decimal
	parsed bool
}

func NewEntry() *Entry {
	return &Entry{parsed: true}
}

// Update replaces the text. Text starting with "-" is refused and leaves the
// entry untouched. Text that does not parse is kept but marks the amount
// invalid.
func (e *Entry) Update(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "-") {
		return false
	}
	e.text = text

	if trimmed == "" {
		e.amount, e.parsed = decimal.Zero, true
		return true
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil || amount.IsNegative() || outOfRange(amount) {
		e.amount, e.parsed = decimal.Zero, false
		return true
	}
	e.amount, e.parsed = amount, true
	return true
}

func outOfRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	return exp > maxExponent || exp < -maxExponent-int64(d.NumDigits())
}

// SetMax fills in a max value
func (e *Entry) SetMax(v decimal.Decimal) {
	e.Update(v.String())
}

func (e *Entry) Text() string {
	return e.text
}

// Amount returns the parsed amount, false when the text did not parse
func (e *Entry) Amount() (decimal.Decimal, bool) {
	return e.amount, e.parsed
}

// Valid reports whether the text parsed and has no more fractional digits
// than decimals. Zero is valid.
func (e *Entry) Valid(decimals int32) bool {
	if !e.parsed {
		return false
	}
	return fractionalDigits(e.amount) <= int(decimals)
}

// SubmitDisabled reports whether the submit control must be disabled
func (e *Entry) SubmitDisabled(decimals int32, inFlight bool) bool {
	return inFlight || !e.Valid(decimals) || e.amount.IsZero()
}

// fractionalDigits counts significant digits after the decimal point, so
// "1.500" counts as one
func fractionalDigits(d decimal.Decimal) int {
	exp := int64(d.Exponent())
	if exp >= 0 || d.IsZero() {
		return 0
	}

	coefficient := d.Coefficient()
	ten := big.NewInt(10)
	q, r := new(big.Int), new(big.Int)
	for exp < 0 {
		q.QuoRem(coefficient, ten, r)
		if r.Sign() != 0 {
			break
		}
		coefficient.Set(q)
		exp++
	}
	return int(-exp)
}
