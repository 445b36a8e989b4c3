/*

This is a custom type for wallet positions which contains all the state
needed for health scoring and fee accounting.

All integer token amounts are kept as decimal strings exactly as the
subgraph returns them. Consumers parse them with big-integer arithmetic
(utils.ParseTokenAmount) before any floating-point use; a malformed or
missing string parses to 0, never an error.

*/

package types

// PositionToken is token metadata attached to one side of a position.
// Decimals arrives as a numeric string from the subgraph.
type PositionToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// Tick is a tick boundary reference. TickIdx is a numeric string.
type Tick struct {
	TickIdx string `json:"tick_idx"`
}

// Position is one Uniswap V3 position as consumed by the health scorer.
// Amount fields are string-encoded integers in token base units.
type Position struct {
	ID                    string        `json:"id"`
	Token0                PositionToken `json:"token0"`
	Token1                PositionToken `json:"token1"`
	Liquidity             string        `json:"liquidity"`
	DepositedToken0       string        `json:"deposited_token0"`
	DepositedToken1       string        `json:"deposited_token1"`
	CollectedFeesToken0   string        `json:"collected_fees_token0"`
	CollectedFeesToken1   string        `json:"collected_fees_token1"`
	UncollectedFeesToken0 string        `json:"uncollected_fees_token0"`
	UncollectedFeesToken1 string        `json:"uncollected_fees_token1"`
	TickLower             *Tick         `json:"tick_lower,omitempty"`
	TickUpper             *Tick         `json:"tick_upper,omitempty"`
}
