/*

This file contains the fixed asset classification sets used by the pair-type
advisor. Membership checks are case-insensitive; callers must upper-case
symbols before lookup.

*/

package config

// StableSymbols is the set of recognized USD-pegged stablecoin symbols.
var StableSymbols = map[string]bool{
	"USDC":   true,
	"USDT":   true,
	"DAI":    true,
	"BUSD":   true,
	"TUSD":   true,
	"FRAX":   true,
	"LUSD":   true,
	"USDP":   true,
	"GUSD":   true,
	"USDC.E": true,
}

// BlueChipSymbols is the set of recognized blue-chip asset symbols.
// Stablecoin classification takes precedence over blue-chip.
var BlueChipSymbols = map[string]bool{
	"WETH":   true,
	"ETH":    true,
	"WBTC":   true,
	"BTC":    true,
	"CBETH":  true,
	"WSTETH": true,
	"RETH":   true,
}
