/*
This file contains the single shared conversion path from subgraph
decimal-string token amounts to display floats. Keeping it in one place
prevents drift between the health scorer and the fee accounting helpers.
*/

package utils

import (
	"math"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
)

const maxTokenDecimals = 77 // sdkmath.Int holds 256 bits, ~77 decimal digits

// ParseTokenAmount parses a string-encoded base-unit integer amount and
// scales it by 10^decimals into a float64. Malformed, missing, or negative
// input parses to 0; the result is always finite.
func ParseTokenAmount(raw string, decimals int) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || decimals < 0 || decimals > maxTokenDecimals {
		return 0
	}

	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || amount.IsNegative() {
		return 0
	}
	if amount.IsZero() {
		return 0
	}

	dec := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < decimals && i < sdkmath.LegacyPrecision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}
	// LegacyDec carries 18 fractional digits; shift the remainder on the
	// integer side first so very high-decimal tokens stay exact.
	if decimals > sdkmath.LegacyPrecision {
		shifted, err := safeShift(amount, decimals-sdkmath.LegacyPrecision)
		if err {
			return 0
		}
		dec = sdkmath.LegacyNewDecFromInt(shifted)
	}

	result := dec.Quo(factor)
	f, err := result.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// safeShift divides amount by 10^n with truncation.
func safeShift(amount sdkmath.Int, n int) (sdkmath.Int, bool) {
	divisor := sdkmath.NewInt(1)
	ten := sdkmath.NewInt(10)
	for i := 0; i < n; i++ {
		divisor = divisor.Mul(ten)
	}
	if divisor.IsZero() {
		return sdkmath.ZeroInt(), true
	}
	return amount.Quo(divisor), false
}

// ParseRawAmount parses a string-encoded integer into a float64 without any
// decimal scaling (used for raw liquidity values). Malformed or negative
// input parses to 0.
func ParseRawAmount(raw string) float64 {
	return ParseTokenAmount(raw, 0)
}

// ParseDecimals parses a decimals field that arrives as a numeric string.
// Malformed or out-of-range input falls back to 18 (the ERC-20 default).
func ParseDecimals(raw string) int {
	d, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || d < 0 || d > maxTokenDecimals {
		return 18
	}
	return d
}

// ParseTickIdx parses a tick index string. The second return is false for
// malformed input.
func ParseTickIdx(raw string) (int, bool) {
	t, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return t, true
}
