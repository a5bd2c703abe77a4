package ml

import "strconv"

const (
	fallbackPricePerSqft  = 0.1
	fallbackBHKStep       = 0.2
	fallbackBathStep      = 0.1
	fallbackKnownLocation = 1.2
)

// FallbackPrice is the deterministic estimate used when the model cannot
// answer. knownLocation reports whether the location is a schema column.
func FallbackPrice(sqft float64, bhk, bath int, knownLocation bool) float64 {
	base := sqft * fallbackPricePerSqft
	bhkMult := 1 + float64(bhk-1)*fallbackBHKStep
	bathMult := 1 + float64(bath-1)*fallbackBathStep
	locMult := 1.0
	if knownLocation {
		locMult = fallbackKnownLocation
	}
	return RoundPrice(base * bhkMult * bathMult * locMult)
}

// RoundPrice rounds the exact binary value to two decimal places, ties to
// even.
func RoundPrice(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
