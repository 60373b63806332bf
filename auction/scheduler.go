package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/metrics"
)

// Candidate is an active time-decaying order the scheduler re-evaluates.
type Candidate struct {
	OrderID   string
	Pair      string
	Start     decimal.Decimal
	End       decimal.Decimal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CandidateSource supplies the current set of active auction candidates.
type CandidateSource interface {
	AuctionCandidates() []Candidate
}

// QuoteSink receives evaluated quotes. May be nil.
type QuoteSink func(orderID, pair string, price decimal.Decimal, terminal bool)

// Scheduler periodically re-evaluates candidate prices and publishes them
// to metrics and an optional sink. It replaces UI-side polling refresh.
type Scheduler struct {
	source   CandidateSource
	interval time.Duration
	sink     QuoteSink
	log      *logger.Logger

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewScheduler creates a scheduler over source. Interval defaults to 2s.
func NewScheduler(source CandidateSource, interval time.Duration, sink QuoteSink, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		source:   source,
		interval: interval,
		sink:     sink,
		log:      log,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start launches the evaluation loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop terminates the loop and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
}

func (s *Scheduler) run() {
	defer close(s.doneChan)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Evaluate(time.Now().UTC())
		}
	}
}

// Evaluate prices every candidate at now. Exposed for tests and for
// callers that drive their own clock.
func (s *Scheduler) Evaluate(now time.Time) {
	for _, c := range s.source.AuctionCandidates() {
		price := PriceAt(c.Start, c.End, c.CreatedAt, c.ExpiresAt, now)
		terminal := TerminalAt(c.ExpiresAt, now)
		metrics.AuctionQuote.WithLabelValues(c.Pair).Set(price.InexactFloat64())
		if s.sink != nil {
			s.sink(c.OrderID, c.Pair, price, terminal)
		}
	}
}
