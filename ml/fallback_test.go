package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackPriceUnknownLocation(t *testing.T) {
	assert.Equal(t, 132.0, FallbackPrice(1000, 2, 2, false))
}

func TestFallbackPriceKnownLocation(t *testing.T) {
	assert.Equal(t, 158.4, FallbackPrice(1000, 2, 2, true))
	assert.Equal(t, 120.0, FallbackPrice(1000, 1, 1, true))
}

func TestFallbackPriceMonotonic(t *testing.T) {
	for _, known := range []bool{false, true} {
		for bhk := 1; bhk <= 10; bhk++ {
			for bath := 1; bath <= 10; bath++ {
				for _, sqft := range []float64{1, 350, 1000, 2400.5} {
					p := FallbackPrice(sqft, bhk, bath, known)
					assert.LessOrEqual(t, p, FallbackPrice(sqft*1.5, bhk, bath, known))
					if bhk < 10 {
						assert.LessOrEqual(t, p, FallbackPrice(sqft, bhk+1, bath, known))
					}
					if bath < 10 {
						assert.LessOrEqual(t, p, FallbackPrice(sqft, bhk, bath+1, known))
					}
				}
			}
		}
	}
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 84.69, RoundPrice(84.6912))
	assert.Equal(t, 84.7, RoundPrice(84.6951))
	assert.Equal(t, -3.0, RoundPrice(-3.001))
}

func TestRoundPriceHalfway(t *testing.T) {
	// 0.125 is exact in binary and rounds to even; 100.005 is stored just
	// below the midpoint
	assert.Equal(t, 0.12, RoundPrice(0.125))
	assert.Equal(t, 0.38, RoundPrice(0.375))
	assert.Equal(t, 100.0, RoundPrice(100.005))
	assert.Equal(t, 2.67, RoundPrice(2.675))
}

func TestFallbackPriceHalfway(t *testing.T) {
	assert.Equal(t, 0.12, FallbackPrice(1.25, 1, 1, false))
	assert.Equal(t, 100.0, FallbackPrice(1000.05, 1, 1, false))
}
