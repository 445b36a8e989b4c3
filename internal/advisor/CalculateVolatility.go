package advisor

import (
	"errors"
	"math"
	"sort"

	"github.com/poolparty/advisor/internal/types"
)

// ErrInsufficientData indicates that not enough price points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// CalculateVolatility calculates annualized historical volatility from a
// price series using logarithmic returns and population standard deviation.
// The series is sorted chronologically first. The annualizationFactor must
// match the data frequency (8760 for hourly, 365 for daily).
func CalculateVolatility(prices []types.PricePoint, annualizationFactor float64) (float64, error) {
	n := len(prices)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	sorted := make([]types.PricePoint, n)
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		current := sorted[i].Price
		previous := sorted[i-1].Price

		// Non-positive prices would break math.Log; skip the pair.
		if previous <= 0 || current <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return 0, ErrInsufficientData
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += (r - mean) * (r - mean)
	}
	variance := sumSqDiff / float64(numReturns)
	stdDev := math.Sqrt(variance)

	return stdDev * math.Sqrt(annualizationFactor), nil
}
