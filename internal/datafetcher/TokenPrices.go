package datafetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/poolparty/advisor/internal/logger"
)

var priceLogger = logger.GetForComponent("price_retriever")

const tokenPricesQuery = `
query TokenPrices($addresses: [ID!]) {
  bundle(id: "1") {
    ethPriceUSD
  }
  tokens(where: {id_in: $addresses}) {
    id
    derivedETH
  }
}`

// TokenPricesUSD fetches USD prices for the given token addresses via the
// subgraph's derivedETH quotes and the global ETH/USD bundle. The returned
// map is keyed by lowercase address; tokens the subgraph does not know are
// simply absent.
func (c *SubgraphClient) TokenPricesUSD(ctx context.Context, addresses []string) (map[string]float64, error) {
	if len(addresses) == 0 {
		return map[string]float64{}, nil
	}

	lowered := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			lowered = append(lowered, addr)
		}
	}

	var data struct {
		Bundle struct {
			EthPriceUSD string `json:"ethPriceUSD"`
		} `json:"bundle"`
		Tokens []struct {
			ID         string `json:"id"`
			DerivedETH string `json:"derivedETH"`
		} `json:"tokens"`
	}
	vars := map[string]interface{}{"addresses": lowered}
	if err := c.Execute(ctx, tokenPricesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch token prices: %w", err)
	}

	ethPrice := parseSubgraphFloat(data.Bundle.EthPriceUSD)
	if ethPrice <= 0 {
		priceLogger.Warn().
			Str("ethPriceUSD", data.Bundle.EthPriceUSD).
			Msg("Subgraph bundle has no usable ETH price, returning empty price map")
		return map[string]float64{}, nil
	}

	prices := make(map[string]float64, len(data.Tokens))
	for _, token := range data.Tokens {
		derived := parseSubgraphFloat(token.DerivedETH)
		if derived <= 0 {
			continue
		}
		prices[strings.ToLower(token.ID)] = derived * ethPrice
	}

	priceLogger.Debug().
		Int("requested", len(lowered)).
		Int("priced", len(prices)).
		Float64("ethPriceUSD", ethPrice).
		Msg("Fetched token prices")

	return prices, nil
}
