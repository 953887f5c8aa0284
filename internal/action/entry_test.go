package action

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpdateRejectsNegative(t *testing.T) {
	for _, text := range []string{"-", "-1", "-0.5", "--3", " -5", "\t-0.1"} {
		t.Run(text, func(t *testing.T) {
			e := NewEntry()
			assert.True(t, e.Update("12.5"))

			assert.False(t, e.Update(text))
			assert.Equal(t, "12.5", e.Text())
			amount, ok := e.Amount()
			assert.True(t, ok)
			assert.Equal(t, "12.5", amount.String())
		})
	}
}

func TestValidAndSubmitDisabled(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		decimals int32
		valid    bool
		disabled bool
	}{
		{name: "whole", text: "10", decimals: 6, valid: true, disabled: false},
		{name: "at precision", text: "1.123456", decimals: 6, valid: true, disabled: false},
		{name: "trailing zeros", text: "1.5000000000", decimals: 6, valid: true, disabled: false},
		{name: "over precision", text: "1.1234567", decimals: 6, valid: false, disabled: true},
		{name: "zero decimals", text: "0.1", decimals: 0, valid: false, disabled: true},
		{name: "zero", text: "0", decimals: 6, valid: true, disabled: true},
		{name: "zero with fraction", text: "0.000", decimals: 6, valid: true, disabled: true},
		{name: "empty", text: "", decimals: 6, valid: true, disabled: true},
		{name: "garbage", text: "abc", decimals: 6, valid: false, disabled: true},
		{name: "two points", text: "1.2.3", decimals: 6, valid: false, disabled: true},
		{name: "surrounding spaces", text: " 2.5 ", decimals: 6, valid: true, disabled: false},
		{name: "exponent", text: "1.5e-3", decimals: 6, valid: true, disabled: false},
		{name: "exponent over precision", text: "1e-7", decimals: 6, valid: false, disabled: true},
		{name: "huge negative exponent", text: "1e-2000000000", decimals: 18, valid: false, disabled: true},
		{name: "huge positive exponent", text: "1e2000000000", decimals: 18, valid: false, disabled: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEntry()
			assert.True(t, e.Update(tc.text))
			assert.Equal(t, tc.text, e.Text())
			assert.Equal(t, tc.valid, e.Valid(tc.decimals))
			assert.Equal(t, tc.disabled, e.SubmitDisabled(tc.decimals, false))
		})
	}
}

func TestSubmitDisabledWhileInFlight(t *testing.T) {
	e := NewEntry()
	e.Update("10")
	assert.False(t, e.SubmitDisabled(6, false))
	assert.True(t, e.SubmitDisabled(6, true))
}

func TestNewEntryIsEmptyZero(t *testing.T) {
	e := NewEntry()
	amount, ok := e.Amount()
	assert.True(t, ok)
	assert.True(t, amount.IsZero())
	assert.True(t, e.SubmitDisabled(18, false))
}

func TestExtremeExponentIsCheap(t *testing.T) {
	e := NewEntry()
	start := time.Now()
	for i := 0; i < 100; i++ {
		e.Update("1e-2000000000")
		e.Valid(6)
		e.SubmitDisabled(6, false)
	}
	assert.Less(t, time.Since(start), time.Second)

	amount, ok := e.Amount()
	assert.False(t, ok)
	assert.True(t, amount.IsZero())
}

func TestFractionalDigits(t *testing.T) {
	tests := map[string]int{
		"10":           0,
		"1e3":          0,
		"0":            0,
		"1.5":          1,
		"1.500":        1,
		"0.000001":     6,
		"123.45600":    3,
		"1e-40":        40,
		"2.50e-2":      3,
		"100.00000000": 0,
	}
	for text, want := range tests {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, want, fractionalDigits(decimal.RequireFromString(text)))
		})
	}
}
