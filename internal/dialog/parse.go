package dialog

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	maxInputLen       = 64
	maxFractionDigits = 18
)

// верхняя граница для любого вводимого числа (цены, количества)
var maxValue = decimal.New(1, 15)

// ParsePositive accepts a plain positive number below 1e15 with at most 18
// fractional digits. Spaces are ignored and a comma works as the decimal
// separator, so "60 000" and "0,5" are valid. Exponent notation is rejected.
func ParsePositive(text string) (decimal.Decimal, bool) {
	if len(text) > maxInputLen {
		return decimal.Decimal{}, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, text)

	if cleaned == "" || strings.ContainsAny(cleaned, "eE") {
		return decimal.Decimal{}, false
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil || !v.IsPositive() {
		return decimal.Decimal{}, false
	}

	if v.GreaterThanOrEqual(maxValue) || -v.Exponent() > maxFractionDigits {
		return decimal.Decimal{}, false
	}

	return v, true
}
