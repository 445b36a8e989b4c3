package datafetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubSubgraph(t *testing.T, response string) *SubgraphClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return NewSubgraphClient(server.URL)
}

func TestTopPoolsParsesSubgraphRows(t *testing.T) {
	client := newStubSubgraph(t, `{
		"data": {
			"pools": [
				{
					"id": "0xABCDEF",
					"feeTier": "500",
					"createdAtTimestamp": "1620000000",
					"totalValueLockedUSD": "10000000.5",
					"token0": {"id": "0xAAA", "symbol": "USDC", "decimals": "6"},
					"token1": {"id": "0xBBB", "symbol": "USDT", "decimals": "6"},
					"poolDayData": [{"volumeUSD": "5500000.25"}]
				},
				{
					"id": "",
					"feeTier": "3000",
					"createdAtTimestamp": "0",
					"totalValueLockedUSD": "1",
					"token0": {"id": "", "symbol": "", "decimals": ""},
					"token1": {"id": "", "symbol": "", "decimals": ""},
					"poolDayData": []
				}
			]
		}
	}`)

	pools, err := client.TopPools(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, pools, 1, "rows without an ID are dropped")

	pool := pools[0]
	assert.Equal(t, "0xabcdef", pool.ID)
	assert.Equal(t, "USDC", pool.Token0Symbol)
	assert.Equal(t, "0xaaa", pool.Token0)
	assert.Equal(t, 500, pool.FeeTierRaw)
	assert.InDelta(t, 10_000_000.5, pool.TvlUSD, 1e-6)
	assert.InDelta(t, 5_500_000.25, pool.Volume24hUSD, 1e-6)
	assert.False(t, pool.CreatedAt.IsZero())
}

func TestPoolDayDataReturnsChronological(t *testing.T) {
	// The subgraph answers newest first; the client must flip the order.
	client := newStubSubgraph(t, `{
		"data": {
			"poolDayDatas": [
				{"date": 1719964800, "tvlUSD": "300", "volumeUSD": "30", "feesUSD": "3"},
				{"date": 1719878400, "tvlUSD": "200", "volumeUSD": "20", "feesUSD": "2"},
				{"date": 1719792000, "tvlUSD": "100", "volumeUSD": "10", "feesUSD": "1"}
			]
		}
	}`)

	days, err := client.PoolDayData(context.Background(), "0xabc", 30)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.InDelta(t, 100, days[0].TvlUSD, 1e-9)
	assert.InDelta(t, 300, days[2].TvlUSD, 1e-9)
	assert.Less(t, days[0].Date, days[2].Date)
}

func TestPositionsByOwnerKeepsAmountStringsVerbatim(t *testing.T) {
	client := newStubSubgraph(t, `{
		"data": {
			"positions": [
				{
					"id": "42",
					"liquidity": "123456789012345678901234567890",
					"depositedToken0": "1000000000000000000",
					"depositedToken1": "0",
					"collectedFeesToken0": "999",
					"collectedFeesToken1": "1",
					"token0": {"id": "0xAAA", "symbol": "WETH", "decimals": "18"},
					"token1": {"id": "0xBBB", "symbol": "USDC", "decimals": "6"},
					"tickLower": {"tickIdx": "-887220"},
					"tickUpper": {"tickIdx": "887220"}
				}
			]
		}
	}`)

	positions, err := client.PositionsByOwner(context.Background(), "0xOwner")
	require.NoError(t, err)
	require.Len(t, positions, 1)

	position := positions[0]
	// No numeric conversion happens on the wire amounts.
	assert.Equal(t, "123456789012345678901234567890", position.Liquidity)
	assert.Equal(t, "1000000000000000000", position.DepositedToken0)
	assert.Equal(t, "0", position.UncollectedFeesToken0)
	require.NotNil(t, position.TickLower)
	assert.Equal(t, "-887220", position.TickLower.TickIdx)
	assert.Equal(t, "0xaaa", position.Token0.Address)
}

func TestPositionsByOwnerRejectsEmptyOwner(t *testing.T) {
	client := NewSubgraphClient("http://localhost:0")
	_, err := client.PositionsByOwner(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidSubgraphData)
}

func TestTokenPricesUSD(t *testing.T) {
	client := newStubSubgraph(t, `{
		"data": {
			"bundle": {"ethPriceUSD": "2000"},
			"tokens": [
				{"id": "0xAAA", "derivedETH": "1"},
				{"id": "0xBBB", "derivedETH": "0.0005"},
				{"id": "0xCCC", "derivedETH": "bogus"}
			]
		}
	}`)

	prices, err := client.TokenPricesUSD(context.Background(), []string{"0xAAA", "0xBBB", "0xCCC"})
	require.NoError(t, err)

	assert.InDelta(t, 2000, prices["0xaaa"], 1e-9)
	assert.InDelta(t, 1, prices["0xbbb"], 1e-9)
	_, present := prices["0xccc"]
	assert.False(t, present, "unparseable quotes are omitted")
}

func TestExecuteSurfacesGraphQLErrors(t *testing.T) {
	client := newStubSubgraph(t, `{"errors": [{"message": "rate limited"}]}`)

	var out struct{}
	err := client.Execute(context.Background(), `query { pools { id } }`, nil, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubgraphUnavailable)
	assert.Contains(t, err.Error(), "rate limited")
}
