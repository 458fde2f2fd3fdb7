package planning

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a numeric cell that may use Brazilian formatting.
// "1.234,56" and "1234,56" both mean 1234.56; "370.37" is plain decimal.
// The rule: a comma is always the decimal separator when present, and any
// dots alongside a comma are thousands separators.
func ParseDecimal(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}
	return decimal.NewFromString(v)
}

// ParseFloat is ParseDecimal for callers that work in float64. The second
// return is false when the cell is not a number.
func ParseFloat(s string) (float64, bool) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseFloatOrZero reads a cell as a number, treating blanks and garbage
// as zero. Used for optional columns.
func ParseFloatOrZero(s string) float64 {
	v, ok := ParseFloat(s)
	if !ok {
		return 0
	}
	return v
}
