package datafetcher

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolparty/advisor/internal/types"
)

func TestRollingWindowEvictsOldest(t *testing.T) {
	window := NewRollingWindow(3)

	for i := 1; i <= 5; i++ {
		window.Push(types.PricePoint{Time: int64(i), Price: float64(i)})
	}

	require.Equal(t, 3, window.Len())
	snapshot := window.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, int64(3), snapshot[0].Time)
	assert.Equal(t, int64(5), snapshot[2].Time)
}

func TestRollingWindowIgnoresBadPrices(t *testing.T) {
	window := NewRollingWindow(5)

	window.Push(types.PricePoint{Time: 1, Price: 0})
	window.Push(types.PricePoint{Time: 2, Price: -5})
	window.Push(types.PricePoint{Time: 3, Price: math.NaN()})
	window.Push(types.PricePoint{Time: 4, Price: math.Inf(1)})
	assert.Zero(t, window.Len())

	window.Push(types.PricePoint{Time: 5, Price: 1.5})
	assert.Equal(t, 1, window.Len())
}

func TestRollingWindowSnapshotIsACopy(t *testing.T) {
	window := NewRollingWindow(2)
	window.Push(types.PricePoint{Time: 1, Price: 10})

	snapshot := window.Snapshot()
	snapshot[0].Price = 999

	assert.InDelta(t, 10, window.Snapshot()[0].Price, 1e-12)
}

func TestRollingWindowCoercesCapacity(t *testing.T) {
	window := NewRollingWindow(0)
	window.Push(types.PricePoint{Time: 1, Price: 1})
	window.Push(types.PricePoint{Time: 2, Price: 2})

	require.Equal(t, 1, window.Len())
	assert.Equal(t, int64(2), window.Snapshot()[0].Time)
}

func TestRollingWindowConcurrentPush(t *testing.T) {
	window := NewRollingWindow(100)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < 50; i++ {
				window.Push(types.PricePoint{Time: base*1000 + i, Price: 1})
				window.Snapshot()
			}
		}(int64(g))
	}
	wg.Wait()

	assert.Equal(t, 100, window.Len())
}

func TestPriceStreamWindowPerSymbol(t *testing.T) {
	stream := NewPriceStream("ws://localhost:0", 4)

	stream.handleMessage([]byte(`{"symbol":"WETH","time":1,"price":2000}`))
	stream.handleMessage([]byte(`{"symbol":"WETH","time":2,"price":2010}`))
	stream.handleMessage([]byte(`{"symbol":"USDC","time":1,"price":1.0}`))

	assert.Equal(t, 2, stream.Window("WETH").Len())
	assert.Equal(t, 1, stream.Window("USDC").Len())

	// Malformed or incomplete messages are dropped silently.
	stream.handleMessage([]byte(`not json`))
	stream.handleMessage([]byte(`{"symbol":"","time":1,"price":5}`))
	stream.handleMessage([]byte(`{"symbol":"WETH","time":0,"price":5}`))
	stream.handleMessage([]byte(`{"symbol":"WETH","time":3,"price":-5}`))

	assert.Equal(t, 2, stream.Window("WETH").Len())
}

func TestPriceStreamReceivesTicksOverWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"WETH","time":1,"price":2000}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"WETH","time":2,"price":2010}`))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stream := NewPriceStream("ws"+strings.TrimPrefix(server.URL, "http"), 10)
	stream.Start(ctx)

	require.Eventually(t, func() bool {
		return stream.Window("WETH").Len() == 2
	}, 5*time.Second, 10*time.Millisecond)

	snapshot := stream.Window("WETH").Snapshot()
	assert.InDelta(t, 2000, snapshot[0].Price, 1e-9)
	assert.InDelta(t, 2010, snapshot[1].Price, 1e-9)

	cancel()
	stream.Wait()
}
