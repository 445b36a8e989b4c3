/*

This file contains the fee-tier and pair-type advisor. Fee tiers use the
raw Uniswap millionths convention: 10000 = 1%, 3000 = 0.3%, 500 = 0.05%.

*/

package advisor

import (
	"strings"

	"github.com/poolparty/advisor/internal/config"
	"github.com/poolparty/advisor/internal/types"
)

// PairMetaFromSymbols classifies a token pair by symbol membership. Stable
// requires both symbols in the stablecoin set; blue-chip requires at least
// one blue-chip symbol and takes effect only when the pair is not stable.
func PairMetaFromSymbols(symbolA, symbolB string) types.PairMeta {
	a := strings.ToUpper(strings.TrimSpace(symbolA))
	b := strings.ToUpper(strings.TrimSpace(symbolB))

	stable := config.StableSymbols[a] && config.StableSymbols[b]
	blueChip := !stable && (config.BlueChipSymbols[a] || config.BlueChipSymbols[b])

	return types.PairMeta{Stable: stable, BlueChip: blueChip}
}

// ClassifyPair maps pair meta onto the range-heuristic pair class.
func ClassifyPair(meta types.PairMeta) types.PairClass {
	switch {
	case meta.Stable:
		return types.PairStable
	case meta.BlueChip:
		return types.PairBlueChip
	default:
		return types.PairLongTail
	}
}

// AnalyzeFeeTier returns the screening bonus and note for a raw fee tier.
// Unknown or zero tiers degrade to bonus 0; this function never errors.
func AnalyzeFeeTier(feeTierRaw int, meta types.PairMeta) types.FeeTierNote {
	switch {
	case feeTierRaw >= 10000:
		return types.FeeTierNote{
			Bonus: 5,
			Note:  "1% tier: high per-trade fee capture, suits volatile long-tail pairs",
		}
	case feeTierRaw >= 3000:
		return types.FeeTierNote{
			Bonus: 2,
			Note:  "0.3% tier: the standard tier, balanced fee capture",
		}
	case feeTierRaw >= 500:
		if meta.Stable {
			return types.FeeTierNote{
				Bonus: 1,
				Note:  "0.05% tier on a stable pair: thin fees offset by negligible IL",
			}
		}
		return types.FeeTierNote{
			Bonus: 0,
			Note:  "0.05% tier on a volatile pair: thin fees rarely cover IL",
		}
	default:
		return types.FeeTierNote{
			Bonus: 0,
			Note:  "Unknown or minimal fee tier",
		}
	}
}
