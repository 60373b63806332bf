package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"swap-resolver-go/infrastructure/logger"
)

// streamTick is the wire shape of one feed message.
type streamTick struct {
	Token   string          `json:"token"`
	ChainID int64           `json:"chainId"`
	Price   decimal.Decimal `json:"price"`
	TsMs    int64           `json:"ts"`
}

type pairKey struct {
	token string
	chain int64
}

// StreamSource subscribes to a websocket price feed and caches the latest
// tick per (token, chain). Fetch serves the cached observation with its
// real timestamp; the aggregator decides whether it is still usable.
// Before the first tick, or for pairs the feed never published, Fetch
// returns ErrUnavailable.
type StreamSource struct {
	SourceName string
	Endpoint   string
	Tier       int
	Dialer     *websocket.Dialer

	mu     sync.RWMutex
	latest map[pairKey]Quote

	log      *logger.Logger
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewStreamSource creates a stream adapter for endpoint. Call Start to
// begin consuming the feed.
func NewStreamSource(name, endpoint string, tier int, log *logger.Logger) *StreamSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &StreamSource{
		SourceName: name,
		Endpoint:   endpoint,
		Tier:       tier,
		Dialer:     websocket.DefaultDialer,
		latest:     make(map[pairKey]Quote),
		log:        log,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

func (s *StreamSource) Name() string   { return s.SourceName }
func (s *StreamSource) TrustTier() int { return s.Tier }

// Start launches the read loop with reconnect/backoff.
func (s *StreamSource) Start() {
	go s.run()
}

// Stop terminates the read loop.
func (s *StreamSource) Stop() {
	close(s.stopChan)
	<-s.doneChan
}

func (s *StreamSource) run() {
	defer close(s.doneChan)
	backoff := time.Second
	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		if err := s.consume(); err != nil {
			s.log.LogError(err, map[string]interface{}{"source": s.SourceName, "endpoint": s.Endpoint})
		}

		select {
		case <-s.stopChan:
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *StreamSource) consume() error {
	conn, _, err := s.Dialer.Dial(s.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when Stop is called.
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-s.stopChan:
			_ = conn.Close()
		case <-closed:
		}
	}()

	for {
		var tick streamTick
		if err := conn.ReadJSON(&tick); err != nil {
			select {
			case <-s.stopChan:
				return nil
			default:
				return fmt.Errorf("read feed: %w", err)
			}
		}
		if tick.Token == "" || !tick.Price.IsPositive() {
			continue
		}
		observedAt := time.UnixMilli(tick.TsMs).UTC()
		if tick.TsMs == 0 {
			observedAt = time.Now().UTC()
		}
		s.store(Quote{
			Token:      tick.Token,
			ChainID:    tick.ChainID,
			Price:      tick.Price,
			ObservedAt: observedAt,
			Source:     s.SourceName,
			TrustTier:  s.Tier,
		})
	}
}

func (s *StreamSource) store(q Quote) {
	s.mu.Lock()
	s.latest[pairKey{q.Token, q.ChainID}] = q
	s.mu.Unlock()
}

// Fetch returns the cached observation for the pair.
func (s *StreamSource) Fetch(ctx context.Context, token string, chainID int64) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.mu.RLock()
	q, ok := s.latest[pairKey{token, chainID}]
	s.mu.RUnlock()
	if !ok {
		return Quote{}, fmt.Errorf("%w: no tick for %s on chain %d", ErrUnavailable, token, chainID)
	}
	return q, nil
}
