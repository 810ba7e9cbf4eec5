package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtotalAndSum(t *testing.T) {
	a := Subtotal(3, decimal.RequireFromString("5.00"))
	b := Subtotal(2, decimal.RequireFromString("0.1"))
	c := Subtotal(7, decimal.RequireFromString("1.005"))

	assert.True(t, a.Equal(decimal.RequireFromString("15")))
	assert.True(t, b.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, c.Equal(decimal.RequireFromString("7.04")))
	assert.Equal(t, "22.24", Sum(a, b, c).StringFixed(2))
	assert.True(t, Sum().IsZero())
}

func TestParse(t *testing.T) {
	v, ok := Parse("12.50")
	require.True(t, ok)
	assert.Equal(t, "12.50", v.StringFixed(2))

	v, ok = Parse("abc")
	assert.False(t, ok)
	assert.True(t, v.IsZero())

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestFormatUsesLocaleGrouping(t *testing.T) {
	en := Format(decimal.NewFromInt(15000), "en")
	id := Format(decimal.NewFromInt(15000), "id")
	assert.Contains(t, en, "15")
	assert.Contains(t, id, "15")
	assert.NotEqual(t, en, id)
}

func TestFormatKeepsEveryDigit(t *testing.T) {
	v := decimal.RequireFromString("12345678901234567.89")
	assert.Equal(t, "12.345.678.901.234.567,89", Format(v, "id"))
	assert.Equal(t, "12,345,678,901,234,567.89", Format(v, "en"))

	assert.Equal(t, "15.000,00", Format(decimal.NewFromInt(15000), "id"))
	assert.Equal(t, "-1.234,57", Format(decimal.RequireFromString("-1234.565"), "id"))
	assert.Equal(t, "999,00", Format(decimal.NewFromInt(999), "id"))
	assert.Equal(t, "0,01", Format(decimal.RequireFromString("0.005"), "not a locale"))
}
