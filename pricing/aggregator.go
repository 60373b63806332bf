package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/metrics"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Rate is a resolved exchange rate between two tokens, with both legs.
type Rate struct {
	Rate decimal.Decimal
	Src  Quote
	Dst  Quote
}

// Aggregator resolves prices over the configured sources with a
// trust-ordered fallback policy and staleness control. Adapter failures
// are contained here; callers only ever see ErrPriceUnavailable.
type Aggregator struct {
	sources   []Source // ascending trust tier (highest trust first)
	staleness time.Duration
	timeout   time.Duration
	clock     Clock
	log       *logger.Logger
}

// NewAggregator builds an aggregator over sources. staleness bounds quote
// age; timeout bounds each resolution request.
func NewAggregator(sources []Source, staleness, timeout time.Duration, log *logger.Logger) *Aggregator {
	if staleness <= 0 {
		staleness = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if log == nil {
		log = logger.NewNop()
	}
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TrustTier() < ordered[j].TrustTier()
	})
	return &Aggregator{
		sources:   ordered,
		staleness: staleness,
		timeout:   timeout,
		clock:     realClock{},
		log:       log,
	}
}

// SetClock overrides the clock; test hook.
func (a *Aggregator) SetClock(c Clock) { a.clock = c }

type fetchResult struct {
	quote Quote
	err   error
}

// Resolve queries all sources for the pair concurrently and accepts, in
// trust-tier order, the first fresh quote. It returns as soon as the best
// remaining tier has answered acceptably; lower tiers are cancelled.
func (a *Aggregator) Resolve(ctx context.Context, token string, chainID int64) (Quote, error) {
	if len(a.sources) == 0 {
		metrics.PriceUnavailable.Inc()
		return Quote{}, fmt.Errorf("%w: no sources configured", ErrPriceUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]chan fetchResult, len(a.sources))
	for i, src := range a.sources {
		ch := make(chan fetchResult, 1)
		results[i] = ch
		go func(src Source, ch chan<- fetchResult) {
			started := time.Now()
			q, err := src.Fetch(ctx, token, chainID)
			metrics.PriceSourceLatency.WithLabelValues(src.Name()).Observe(time.Since(started).Seconds())
			ch <- fetchResult{quote: q, err: err}
		}(src, ch)
	}

	for i, src := range a.sources {
		var r fetchResult
		select {
		case r = <-results[i]:
		case <-ctx.Done():
			metrics.PriceUnavailable.Inc()
			return Quote{}, fmt.Errorf("%w: deadline before tier %d answered", ErrPriceUnavailable, src.TrustTier())
		}

		if r.err != nil {
			metrics.PriceSourceErrors.WithLabelValues(src.Name()).Inc()
			if i < len(a.sources)-1 {
				metrics.AggregatorFallbacks.Inc()
			}
			continue
		}

		age := a.clock.Now().Sub(r.quote.ObservedAt)
		if age > a.staleness {
			a.log.LogPrice("stale_quote_skipped", map[string]interface{}{
				"source":  src.Name(),
				"token":   token,
				"chain":   chainID,
				"age_sec": age.Seconds(),
			})
			if i < len(a.sources)-1 {
				metrics.AggregatorFallbacks.Inc()
			}
			continue
		}

		return r.quote, nil
	}

	metrics.PriceUnavailable.Inc()
	return Quote{}, fmt.Errorf("%w: all %d tiers exhausted for %s on chain %d", ErrPriceUnavailable, len(a.sources), token, chainID)
}

// ResolveRate resolves src/dst as Resolve(src)/Resolve(dst). Both legs
// run concurrently; if either is unavailable the rate is unavailable,
// never computed from a partial pair.
func (a *Aggregator) ResolveRate(ctx context.Context, srcToken string, srcChain int64, dstToken string, dstChain int64) (Rate, error) {
	type legResult struct {
		quote Quote
		err   error
	}

	srcCh := make(chan legResult, 1)
	dstCh := make(chan legResult, 1)
	go func() {
		q, err := a.Resolve(ctx, srcToken, srcChain)
		srcCh <- legResult{q, err}
	}()
	go func() {
		q, err := a.Resolve(ctx, dstToken, dstChain)
		dstCh <- legResult{q, err}
	}()

	src := <-srcCh
	dst := <-dstCh
	if src.err != nil {
		return Rate{}, src.err
	}
	if dst.err != nil {
		return Rate{}, dst.err
	}
	if !dst.quote.Price.IsPositive() {
		return Rate{}, fmt.Errorf("%w: non-positive destination price", ErrPriceUnavailable)
	}

	return Rate{
		Rate: src.quote.Price.Div(dst.quote.Price),
		Src:  src.quote,
		Dst:  dst.quote,
	}, nil
}
