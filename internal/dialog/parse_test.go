package dialog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePositive(t *testing.T) {
	valid := map[string]string{
		"0.01":                 "0.01",
		"1":                    "1",
		" 60000 ":              "60000",
		"60 000":               "60000",
		"0,5":                  "0.5",
		"999999999999999.99":   "999999999999999.99",
		"0.000000000000000001": "0.000000000000000001",
		"100000.00":            "100000",
	}
	for in, want := range valid {
		v, ok := ParsePositive(in)
		if assert.Truef(t, ok, "input %q", in) {
			assert.Equalf(t, want, v.String(), "input %q", in)
		}
	}

	invalid := []string{
		"", "   ", "abc", "0", "-1", "1.2.3", "NaN", "Inf", "12$", strings.Repeat("9", 100),
		"1.5e3", "1e50000000", "1E10", "5e-3",
		"1000000000000000", "100000000000000000000",
		"0.0000000000000000001",
	}
	for _, in := range invalid {
		_, ok := ParsePositive(in)
		assert.Falsef(t, ok, "input %q", in)
	}
}
