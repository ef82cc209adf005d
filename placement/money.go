// money.go - display conversion for smallest-currency-unit amounts.
//
// All arithmetic in the core runs on int64 amounts in the smallest
// currency unit. Conversion to a human-readable major-unit string happens
// only at the display boundary, through decimal so no float rounding ever
// touches money.
package placement

import "github.com/shopspring/decimal"

// minorUnitExponent is the number of minor-unit digits in the currency
// (2 for paise/cents).
const minorUnitExponent = 2

// DisplayAmount renders a smallest-unit amount as a fixed-point major-unit
// string, e.g. 150000 -> "1500.00".
func DisplayAmount(amount int64) string {
	return decimal.New(amount, -minorUnitExponent).StringFixed(minorUnitExponent)
}

// ParseAmount converts a major-unit decimal string into a smallest-unit
// amount, e.g. "1500.00" -> 150000. Fractions below the minor unit are
// rejected rather than rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Message: "invalid amount"}
	}
	minor := d.Shift(minorUnitExponent)
	if !minor.IsInteger() {
		return 0, &ValidationError{Field: "amount", Message: "amount has sub-unit precision"}
	}
	return minor.IntPart(), nil
}
