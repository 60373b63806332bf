package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"swap-resolver-go/auction"
	"swap-resolver-go/config"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/order"
	"swap-resolver-go/pricing"
	"swap-resolver-go/route"
)

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config tunes the background loops.
type Config struct {
	SweepInterval time.Duration // expiry sweep cadence
	QuoteInterval time.Duration // auction re-quote cadence
}

// Components are the engine's dependencies, built by the caller.
type Components struct {
	Manager    *order.Manager
	Registry   *route.Registry
	Aggregator *pricing.Aggregator
	Streams    []*pricing.StreamSource
	Logger     *logger.Logger
}

// Resolver ties the order manager, route registry and pricing together
// and owns the background loops: the expiry sweeper, the auction quote
// scheduler, and any streaming price feeds.
type Resolver struct {
	cfg        Config
	manager    *order.Manager
	registry   *route.Registry
	aggregator *pricing.Aggregator
	streams    []*pricing.StreamSource
	log        *logger.Logger

	sweeper   *order.Sweeper
	scheduler *auction.Scheduler

	state  State
	impact pricing.ImpactTiers
	mu     sync.RWMutex
}

// New wires a resolver from components.
func New(cfg Config, c Components) (*Resolver, error) {
	if c.Manager == nil {
		return nil, errors.New("order manager is required")
	}
	if c.Registry == nil {
		return nil, errors.New("route registry is required")
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Second
	}
	if cfg.QuoteInterval <= 0 {
		cfg.QuoteInterval = 2 * time.Second
	}

	r := &Resolver{
		cfg:        cfg,
		manager:    c.Manager,
		registry:   c.Registry,
		aggregator: c.Aggregator,
		streams:    c.Streams,
		log:        c.Logger,
		state:      StateIdle,
		impact:     pricing.DefaultImpactTiers(),
	}
	r.sweeper = order.NewSweeper(c.Manager, cfg.SweepInterval, c.Logger)
	r.scheduler = auction.NewScheduler(c.Manager, cfg.QuoteInterval, nil, c.Logger)
	return r, nil
}

// Start launches the background loops.
func (r *Resolver) Start() error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return fmt.Errorf("engine not idle (state: %s)", r.state)
	}
	r.state = StateRunning
	r.mu.Unlock()

	r.log.Info("resolver engine starting",
		zap.Duration("sweep_interval", r.cfg.SweepInterval),
		zap.Duration("quote_interval", r.cfg.QuoteInterval),
		zap.Int("stream_sources", len(r.streams)))

	for _, s := range r.streams {
		s.Start()
	}
	r.sweeper.Start()
	r.scheduler.Start()

	r.log.Info("resolver engine started")
	return nil
}

// Stop shuts the loops down. Idempotent.
func (r *Resolver) Stop() error {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return nil
	}
	r.state = StateStopped
	r.mu.Unlock()

	r.log.Info("resolver engine stopping")

	r.scheduler.Stop()
	r.sweeper.Stop()
	for _, s := range r.streams {
		s.Stop()
	}

	r.log.Info("resolver engine stopped")
	return nil
}

// State returns the engine lifecycle state.
func (r *Resolver) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// ImpactTiers returns the current price impact policy.
func (r *Resolver) ImpactTiers() pricing.ImpactTiers {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.impact
}

// QuoteImpact classifies how far an order's current execution price sits
// from the reference rate observed at creation. Orders created without a
// reference rate classify as minimal impact by construction.
func (r *Resolver) QuoteImpact(orderID string, now time.Time) (pricing.ImpactLevel, error) {
	o, err := r.manager.Get(orderID)
	if err != nil {
		return pricing.ImpactMinimal, err
	}
	quote, err := r.manager.CurrentQuote(orderID, now)
	if err != nil {
		return pricing.ImpactMinimal, err
	}
	pct := pricing.EstimateImpact(o.ReferenceRate, quote)
	return r.ImpactTiers().Classify(pct), nil
}

// ApplyConfig applies the hot-reloadable parts of a new config: the
// route set and the impact tiers. Source topology and loop intervals
// need a restart and are deliberately left alone.
func (r *Resolver) ApplyConfig(cfg config.AppConfig) error {
	routes, err := BuildRoutes(cfg.Routes)
	if err != nil {
		return fmt.Errorf("build routes: %w", err)
	}
	tiers, err := BuildImpactTiers(cfg.Pricing.Impact)
	if err != nil {
		return fmt.Errorf("build impact tiers: %w", err)
	}

	if err := r.registry.Replace(routes); err != nil {
		return fmt.Errorf("replace routes: %w", err)
	}
	r.mu.Lock()
	r.impact = tiers
	r.mu.Unlock()

	r.log.Info("config applied",
		zap.Int("routes", len(routes)))
	return nil
}
