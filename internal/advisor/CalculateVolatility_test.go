package advisor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolparty/advisor/internal/types"
)

func TestCalculateVolatilityKnownValue(t *testing.T) {
	prices := hourlyPrices(100, 110, 100)

	got, err := CalculateVolatility(prices, 8760)
	require.NoError(t, err)

	// Population stddev of [ln(1.1), ln(1/1.1)] is ln(1.1).
	want := math.Log(1.1) * math.Sqrt(8760)
	assert.InDelta(t, want, got, 1e-9)
}

func TestCalculateVolatilityConstantPrices(t *testing.T) {
	got, err := CalculateVolatility(hourlyPrices(50, 50, 50, 50), 8760)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCalculateVolatilityInsufficientData(t *testing.T) {
	_, err := CalculateVolatility(nil, 8760)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CalculateVolatility(hourlyPrices(100), 8760)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Non-positive prices are skipped; all pairs invalid means no returns.
	_, err = CalculateVolatility(hourlyPrices(-5, 0), 8760)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateVolatilitySortsWithoutMutating(t *testing.T) {
	shuffled := []types.PricePoint{
		{Time: 2 * millisPerHour, Price: 100},
		{Time: 0, Price: 100},
		{Time: 1 * millisPerHour, Price: 110},
	}
	ordered := hourlyPrices(100, 110, 100)

	gotShuffled, err := CalculateVolatility(shuffled, 8760)
	require.NoError(t, err)
	gotOrdered, err := CalculateVolatility(ordered, 8760)
	require.NoError(t, err)

	assert.InDelta(t, gotOrdered, gotShuffled, 1e-12)

	// The input slice order is preserved.
	assert.Equal(t, int64(2*millisPerHour), shuffled[0].Time)
	assert.Equal(t, int64(0), shuffled[1].Time)
}
