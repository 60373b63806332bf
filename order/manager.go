package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"swap-resolver-go/auction"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/metrics"
	"swap-resolver-go/pricing"
	"swap-resolver-go/route"
)

// PriceResolver supplies reference rates at creation time. Satisfied by
// *pricing.Aggregator.
type PriceResolver interface {
	ResolveRate(ctx context.Context, srcToken string, srcChain int64, dstToken string, dstChain int64) (pricing.Rate, error)
}

// Intent describes a requested order. CreatedAt defaults to now when zero.
type Intent struct {
	Maker string

	Source Asset
	Dest   Asset

	SourceAmount decimal.Decimal
	StartPrice   decimal.Decimal
	EndPrice     decimal.Decimal // dutch auctions only

	Kind      Kind
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config tunes manager policy.
type Config struct {
	// RequireReferencePrice extends the creation-time price requirement
	// to limit orders; dutch auctions always require one.
	RequireReferencePrice bool
	// PriceTimeout bounds the reference price resolution at creation.
	PriceTimeout time.Duration
}

// Manager is the sole owner of order state transitions.
type Manager struct {
	store    *Store
	registry *route.Registry
	prices   PriceResolver
	log      *logger.Logger
	clock    Clock
	cfg      Config
}

// NewManager wires the manager. registry and prices may be nil in tests
// that exercise single-chain flows without pricing policy.
func NewManager(registry *route.Registry, prices PriceResolver, log *logger.Logger, cfg Config) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.PriceTimeout <= 0 {
		cfg.PriceTimeout = 3 * time.Second
	}
	return &Manager{
		store:    NewStore(),
		registry: registry,
		prices:   prices,
		log:      log,
		clock:    NowUTC,
		cfg:      cfg,
	}
}

// SetClock overrides the clock; test hook.
func (m *Manager) SetClock(c Clock) { m.clock = c }

// Create validates the intent, admits cross-chain routes, resolves the
// reference price when policy requires one, and registers the order as
// Active. Rejections are synchronous and carry a specific reason.
func (m *Manager) Create(ctx context.Context, intent Intent) (Order, error) {
	createdAt := intent.CreatedAt
	if createdAt.IsZero() {
		createdAt = m.clock.Now()
	}

	if err := m.validateIntent(intent, createdAt); err != nil {
		metrics.OrdersRejected.WithLabelValues("invalid_intent").Inc()
		return Order{}, err
	}

	var rt *route.Route
	if intent.Source.ChainID != intent.Dest.ChainID {
		found, err := m.registry.Find(intent.Source.ChainID, intent.Dest.ChainID, intent.Source.Token, intent.Dest.Token)
		if err != nil {
			metrics.OrdersRejected.WithLabelValues("route_not_found").Inc()
			return Order{}, err
		}
		if !m.registry.Admissible(found, intent.SourceAmount) {
			metrics.OrdersRejected.WithLabelValues("route_not_admissible").Inc()
			return Order{}, fmt.Errorf("%w: amount %s outside [%s, %s] or route disabled",
				route.ErrRouteNotAdmissible, intent.SourceAmount, found.MinAmount, found.MaxAmount)
		}
		rt = &found
	}

	var refRate decimal.Decimal
	if intent.Kind == KindDutchAuction || m.cfg.RequireReferencePrice {
		rctx, cancel := context.WithTimeout(ctx, m.cfg.PriceTimeout)
		rate, err := m.prices.ResolveRate(rctx, intent.Source.Token, intent.Source.ChainID, intent.Dest.Token, intent.Dest.ChainID)
		cancel()
		if err != nil {
			metrics.OrdersRejected.WithLabelValues("price_unavailable").Inc()
			return Order{}, fmt.Errorf("reference price for %s: %w", Pair(intent.Source, intent.Dest), err)
		}
		refRate = rate.Rate
	}

	endPrice := intent.EndPrice
	if intent.Kind == KindLimit {
		endPrice = intent.StartPrice
	}

	o := Order{
		ID:            uuid.NewString(),
		Maker:         intent.Maker,
		Source:        intent.Source,
		Dest:          intent.Dest,
		SourceAmount:  intent.SourceAmount,
		StartPrice:    intent.StartPrice,
		EndPrice:      endPrice,
		Filled:        decimal.Zero,
		Kind:          intent.Kind,
		CreatedAt:     createdAt,
		ExpiresAt:     intent.ExpiresAt,
		Status:        StatusActive,
		Route:         rt,
		ReferenceRate: refRate,
	}
	m.store.Add(o)

	metrics.OrdersCreated.WithLabelValues(string(o.Kind)).Inc()
	metrics.OrdersActive.Inc()
	metrics.RecordTransition(string(StatusActive))
	m.log.LogOrder("order_created", o.ID, map[string]interface{}{
		"maker":       o.Maker,
		"kind":        string(o.Kind),
		"pair":        Pair(o.Source, o.Dest),
		"amount":      o.SourceAmount.String(),
		"start_price": o.StartPrice.String(),
		"end_price":   o.EndPrice.String(),
		"cross_chain": o.CrossChain(),
		"expires_at":  o.ExpiresAt,
	})
	return o, nil
}

func (m *Manager) validateIntent(intent Intent, createdAt time.Time) error {
	if !intent.SourceAmount.IsPositive() {
		return fmt.Errorf("%w: sourceAmount must be > 0", ErrInvalidIntent)
	}
	if !intent.ExpiresAt.After(createdAt) {
		return fmt.Errorf("%w: expiresAt must be after createdAt", ErrInvalidIntent)
	}
	switch intent.Kind {
	case KindLimit:
		if !intent.StartPrice.IsPositive() {
			return fmt.Errorf("%w: target price must be > 0", ErrInvalidIntent)
		}
	case KindDutchAuction:
		if !intent.EndPrice.IsPositive() {
			return fmt.Errorf("%w: end price must be > 0", ErrInvalidIntent)
		}
		if intent.StartPrice.LessThan(intent.EndPrice) {
			return fmt.Errorf("%w: start price must be >= end price", ErrInvalidIntent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIntent, intent.Kind)
	}
	return nil
}

// RecordFill applies a settlement-confirmed fill. Fills are not
// self-deduplicating; the remaining-amount bound is the only defense.
func (m *Manager) RecordFill(orderID string, amount decimal.Decimal) (Order, error) {
	if !amount.IsPositive() {
		return Order{}, fmt.Errorf("%w: fill amount must be > 0", ErrInvalidIntent)
	}
	var filledNow bool
	o, err := m.store.Update(orderID, func(o *Order) error {
		if o.Status != StatusActive {
			return fmt.Errorf("%w: %s is %s", ErrOrderNotActive, o.ID, o.Status)
		}
		if amount.GreaterThan(o.Remaining()) {
			return fmt.Errorf("%w: %s > %s", ErrFillExceedsRemaining, amount, o.Remaining())
		}
		o.Filled = o.Filled.Add(amount)
		if o.Filled.Equal(o.SourceAmount) {
			o.Status = StatusFilled
			filledNow = true
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	metrics.FillsTotal.Inc()
	metrics.FillVolume.Add(amount.InexactFloat64())
	if filledNow {
		metrics.OrdersActive.Dec()
		metrics.RecordTransition(string(StatusFilled))
	}
	m.log.LogOrder("fill_recorded", o.ID, map[string]interface{}{
		"amount":    amount.String(),
		"filled":    o.Filled.String(),
		"remaining": o.Remaining().String(),
		"status":    string(o.Status),
	})
	return o, nil
}

// Cancel transitions an Active order to Cancelled.
func (m *Manager) Cancel(orderID string) (Order, error) {
	o, err := m.store.Update(orderID, func(o *Order) error {
		if o.Status != StatusActive {
			return fmt.Errorf("%w: %s is %s", ErrOrderNotActive, o.ID, o.Status)
		}
		o.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	metrics.OrdersActive.Dec()
	metrics.RecordTransition(string(StatusCancelled))
	m.log.LogOrder("order_cancelled", o.ID, nil)
	return o, nil
}

// SweepExpired transitions every Active order past its expiry to Expired.
// Idempotent; faults on one order never stop the sweep.
func (m *Manager) SweepExpired(now time.Time) int {
	expired := 0
	for _, id := range m.store.ActiveIDs() {
		_, err := m.store.Update(id, func(o *Order) error {
			if o.Status != StatusActive {
				return nil // raced with a fill or cancel; nothing to do
			}
			if o.ExpiresAt.After(now) {
				return nil
			}
			if o.Filled.GreaterThanOrEqual(o.SourceAmount) {
				return nil
			}
			o.Status = StatusExpired
			expired++
			metrics.OrdersActive.Dec()
			metrics.RecordTransition(string(StatusExpired))
			m.log.LogOrder("order_expired", o.ID, map[string]interface{}{
				"filled":     o.Filled.String(),
				"expires_at": o.ExpiresAt,
			})
			return nil
		})
		if err != nil {
			m.log.LogError(err, map[string]interface{}{"order_id": id, "op": "sweep"})
		}
	}
	if expired > 0 {
		metrics.SweepExpired.Add(float64(expired))
	}
	return expired
}

// CurrentQuote returns the instantaneous execution price of an Active
// order at now. Terminal orders yield ErrOrderNotActive, never a stale
// number.
func (m *Manager) CurrentQuote(orderID string, now time.Time) (decimal.Decimal, error) {
	o, ok := m.store.Get(orderID)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	if o.Status != StatusActive {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is %s", ErrOrderNotActive, o.ID, o.Status)
	}
	return auction.PriceAt(o.StartPrice, o.EndPrice, o.CreatedAt, o.ExpiresAt, now), nil
}

// Get returns a copy of the order.
func (m *Manager) Get(orderID string) (Order, error) {
	o, ok := m.store.Get(orderID)
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	return o, nil
}

// ListByMaker returns all orders created by maker.
func (m *Manager) ListByMaker(maker string) []Order {
	return m.store.List(func(o Order) bool { return o.Maker == maker })
}

// ListByState returns all orders in the given state.
func (m *Manager) ListByState(status Status) []Order {
	return m.store.List(func(o Order) bool { return o.Status == status })
}

// ActiveCount returns the number of Active orders.
func (m *Manager) ActiveCount() int {
	return len(m.store.ActiveIDs())
}

// AuctionCandidates exposes active dutch auctions to the quote scheduler.
func (m *Manager) AuctionCandidates() []auction.Candidate {
	active := m.store.List(func(o Order) bool {
		return o.Status == StatusActive && o.Kind == KindDutchAuction
	})
	out := make([]auction.Candidate, 0, len(active))
	for _, o := range active {
		out = append(out, auction.Candidate{
			OrderID:   o.ID,
			Pair:      Pair(o.Source, o.Dest),
			Start:     o.StartPrice,
			End:       o.EndPrice,
			CreatedAt: o.CreatedAt,
			ExpiresAt: o.ExpiresAt,
		})
	}
	return out
}
