/*
This file fetches positions for a wallet from the Uniswap V3 subgraph.

Token amounts stay as the exact decimal strings the subgraph returns; the
health scorer and the fee accounting helpers parse them with big-integer
arithmetic on their side. Nothing here converts to float.
*/

package datafetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/poolparty/advisor/internal/types"
)

const positionsByOwnerQuery = `
query PositionsByOwner($owner: String!) {
  positions(first: 100, where: {owner: $owner}) {
    id
    liquidity
    depositedToken0
    depositedToken1
    collectedFeesToken0
    collectedFeesToken1
    token0 { id symbol decimals }
    token1 { id symbol decimals }
    tickLower { tickIdx }
    tickUpper { tickIdx }
  }
}`

type subgraphTick struct {
	TickIdx string `json:"tickIdx"`
}

type subgraphPosition struct {
	ID                  string        `json:"id"`
	Liquidity           string        `json:"liquidity"`
	DepositedToken0     string        `json:"depositedToken0"`
	DepositedToken1     string        `json:"depositedToken1"`
	CollectedFeesToken0 string        `json:"collectedFeesToken0"`
	CollectedFeesToken1 string        `json:"collectedFeesToken1"`
	Token0              subgraphToken `json:"token0"`
	Token1              subgraphToken `json:"token1"`
	TickLower           *subgraphTick `json:"tickLower"`
	TickUpper           *subgraphTick `json:"tickUpper"`
}

// PositionsByOwner fetches all positions held by one wallet address.
// Uncollected fees are not exposed by the subgraph and stay "0"; computing
// them requires on-chain fee-growth state.
func (c *SubgraphClient) PositionsByOwner(ctx context.Context, owner string) ([]types.Position, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner address", ErrInvalidSubgraphData)
	}

	var data struct {
		Positions []subgraphPosition `json:"positions"`
	}
	vars := map[string]interface{}{"owner": owner}
	if err := c.Execute(ctx, positionsByOwnerQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch positions for %s: %w", owner, err)
	}

	positions := make([]types.Position, 0, len(data.Positions))
	for _, raw := range data.Positions {
		if raw.ID == "" {
			subgraphLogger.Warn().Str("owner", owner).Msg("Skipping position row with empty ID")
			continue
		}

		position := types.Position{
			ID:                    raw.ID,
			Token0:                positionToken(raw.Token0),
			Token1:                positionToken(raw.Token1),
			Liquidity:             raw.Liquidity,
			DepositedToken0:       raw.DepositedToken0,
			DepositedToken1:       raw.DepositedToken1,
			CollectedFeesToken0:   raw.CollectedFeesToken0,
			CollectedFeesToken1:   raw.CollectedFeesToken1,
			UncollectedFeesToken0: "0",
			UncollectedFeesToken1: "0",
		}
		if raw.TickLower != nil {
			position.TickLower = &types.Tick{TickIdx: raw.TickLower.TickIdx}
		}
		if raw.TickUpper != nil {
			position.TickUpper = &types.Tick{TickIdx: raw.TickUpper.TickIdx}
		}

		positions = append(positions, position)
	}

	subgraphLogger.Info().
		Str("owner", owner).
		Int("positions", len(positions)).
		Msg("Fetched positions from subgraph")

	return positions, nil
}

func positionToken(t subgraphToken) types.PositionToken {
	return types.PositionToken{
		Address:  strings.ToLower(t.ID),
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
}
