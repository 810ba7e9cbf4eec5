// Package money holds the decimal arithmetic shared by purchases, sales and reports.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Places is the number of fractional digits kept for monetary values.
const Places = 2

// Zero is the additive identity.
var Zero = decimal.Zero

// Subtotal returns qty * unit, rounded to Places.
func Subtotal(qty int, unit decimal.Decimal) decimal.Decimal {
	return Round(unit.Mul(decimal.NewFromInt(int64(qty))))
}

// Sum adds all values and rounds the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}

// Round rounds half away from zero to Places.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(Places)
}

// Parse reads a user supplied amount. Empty or malformed input yields zero and false.
func Parse(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// Format prints v with grouping for the given BCP 47 locale, e.g. "15.000,00" for "id".
// Digits come from the decimal itself; the locale only supplies separators.
func Format(v decimal.Decimal, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	group, point := separators(tag)

	digits := Round(v).StringFixed(Places)
	sign := ""
	if rest, ok := strings.CutPrefix(digits, "-"); ok {
		sign, digits = "-", rest
	}
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// separators reads the grouping and decimal separators the locale printer
// uses for a sample amount. Locales that print non-ASCII digits fall back to
// "," and ".".
func separators(tag language.Tag) (group, point string) {
	sample := message.NewPrinter(tag).Sprintf("%.2f", 1234567.5)
	head, ok := strings.CutPrefix(sample, "1")
	if !ok {
		return ",", "."
	}
	tail, ok := strings.CutSuffix(head, "50")
	if !ok {
		return ",", "."
	}
	end := strings.IndexFunc(tail, isDigit)
	start := strings.LastIndexFunc(tail, isDigit)
	if end < 0 || start < 0 {
		return ",", "."
	}
	return tail[:end], tail[start+1:]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
