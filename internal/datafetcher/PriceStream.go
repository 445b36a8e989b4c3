/*
This file contains the live price stream: a WebSocket listener with
automatic reconnection that feeds a bounded rolling window of price points.
The exit-trigger detectors snapshot the window; nothing here blocks on
consumers.

Stream messages are JSON objects {"symbol": "...", "time": <epoch ms>,
"price": <float>}. Malformed messages are logged at debug level and
dropped.
*/

package datafetcher

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/types"
)

var streamLogger = logger.GetForComponent("price_stream")

const (
	streamInitialBackoff   = 1 * time.Second
	streamMaxBackoff       = 60 * time.Second
	streamBackoffFactor    = 2.0
	streamJitterPercent    = 0.2
	streamHandshakeTimeout = 10 * time.Second
	streamReadTimeout      = 90 * time.Second
)

// RollingWindow is a bounded, mutex-guarded buffer of price points. When
// full, the oldest point is evicted.
type RollingWindow struct {
	mu       sync.RWMutex
	capacity int
	points   []types.PricePoint
}

// NewRollingWindow creates a window holding at most capacity points.
// Non-positive capacities are coerced to 1.
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &RollingWindow{
		capacity: capacity,
		points:   make([]types.PricePoint, 0, capacity),
	}
}

// Push appends a point, evicting the oldest when the window is full.
// Non-finite or non-positive prices are ignored.
func (w *RollingWindow) Push(point types.PricePoint) {
	if point.Price <= 0 || math.IsNaN(point.Price) || math.IsInf(point.Price, 0) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.points) == w.capacity {
		copy(w.points, w.points[1:])
		w.points = w.points[:w.capacity-1]
	}
	w.points = append(w.points, point)
}

// Snapshot returns a copy of the current window contents, oldest first.
func (w *RollingWindow) Snapshot() []types.PricePoint {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]types.PricePoint, len(w.points))
	copy(out, w.points)
	return out
}

// Len returns the number of points currently held.
func (w *RollingWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.points)
}

// PriceStream maintains a WebSocket connection to a price feed and routes
// each symbol's ticks into its own rolling window.
type PriceStream struct {
	url      string
	capacity int

	windowsMu sync.RWMutex
	windows   map[string]*RollingWindow

	connMu  sync.Mutex
	conn    *websocket.Conn
	backoff time.Duration
	wg      sync.WaitGroup
}

// NewPriceStream creates a stream for the given WebSocket endpoint. Each
// symbol gets a rolling window of windowCapacity points.
func NewPriceStream(url string, windowCapacity int) *PriceStream {
	return &PriceStream{
		url:      url,
		capacity: windowCapacity,
		windows:  make(map[string]*RollingWindow),
		backoff:  streamInitialBackoff,
	}
}

// Window returns the rolling window for a symbol, creating it on first use.
func (s *PriceStream) Window(symbol string) *RollingWindow {
	s.windowsMu.Lock()
	defer s.windowsMu.Unlock()

	window, ok := s.windows[symbol]
	if !ok {
		window = NewRollingWindow(s.capacity)
		s.windows[symbol] = window
	}
	return window
}

// Start runs the stream until the context is cancelled.
func (s *PriceStream) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Wait blocks until the stream goroutine has exited.
func (s *PriceStream) Wait() {
	s.wg.Wait()
}

func (s *PriceStream) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			streamLogger.Info().Msg("Price stream stopping")
			s.closeConnection()
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			streamLogger.Warn().
				Err(err).
				Dur("backoff", s.backoff).
				Msg("Price stream connection failed")
			s.waitBackoff(ctx)
			continue
		}

		if err := s.readLoop(ctx); err != nil && ctx.Err() == nil {
			streamLogger.Warn().Err(err).Msg("Price stream read error")
		}

		s.closeConnection()

		if ctx.Err() != nil {
			return
		}
		s.waitBackoff(ctx)
	}
}

func (s *PriceStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: streamHandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	s.backoff = streamInitialBackoff
	streamLogger.Info().Str("endpoint", s.url).Msg("Price stream connected")
	return nil
}

type streamTick struct {
	Symbol string  `json:"symbol"`
	Time   int64   `json:"time"`
	Price  float64 `json:"price"`
}

func (s *PriceStream) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()
		if conn == nil {
			return websocket.ErrCloseSent
		}

		if err := conn.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			return err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		s.handleMessage(message)
	}
}

func (s *PriceStream) handleMessage(data []byte) {
	var tick streamTick
	if err := json.Unmarshal(data, &tick); err != nil {
		streamLogger.Debug().Err(err).Msg("Dropping malformed stream message")
		return
	}
	if tick.Symbol == "" || tick.Time <= 0 {
		streamLogger.Debug().Str("symbol", tick.Symbol).Msg("Dropping incomplete stream tick")
		return
	}

	s.Window(tick.Symbol).Push(types.PricePoint{Time: tick.Time, Price: tick.Price})
}

func (s *PriceStream) closeConnection() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		streamLogger.Info().Msg("Price stream disconnected")
	}
}

func (s *PriceStream) waitBackoff(ctx context.Context) {
	jitter := time.Duration(float64(s.backoff) * streamJitterPercent * (rand.Float64()*2 - 1))
	wait := s.backoff + jitter

	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}

	s.backoff = time.Duration(float64(s.backoff) * streamBackoffFactor)
	if s.backoff > streamMaxBackoff {
		s.backoff = streamMaxBackoff
	}
}
