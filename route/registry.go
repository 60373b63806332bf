// Package route holds configured cross-chain corridors and answers
// admissibility queries against them.
package route

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"swap-resolver-go/infrastructure/logger"
)

var (
	ErrInvalidRoute       = errors.New("invalid route")
	ErrRouteNotFound      = errors.New("route not found")
	ErrRouteNotAdmissible = errors.New("route not admissible")
)

// Route is a configured corridor between two chains for one token pair.
// Bounds apply to the order's source amount at creation time.
type Route struct {
	SourceChainID int64
	DestChainID   int64
	SourceToken   string
	DestToken     string
	BridgeToken   string
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	Enabled       bool
}

type routeKey struct {
	srcChain int64
	dstChain int64
	srcToken string
	dstToken string
}

// Registry maintains the route set. Admin mutations take the write lock;
// lookups read the current snapshot.
type Registry struct {
	mu     sync.RWMutex
	routes map[routeKey]Route
	log    *logger.Logger
}

// NewRegistry creates an empty registry. log may be nil.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		routes: make(map[routeKey]Route),
		log:    log,
	}
}

func validate(r Route) error {
	if r.SourceChainID == r.DestChainID {
		return fmt.Errorf("%w: source and destination chain are equal (%d)", ErrInvalidRoute, r.SourceChainID)
	}
	if r.SourceToken == "" || r.DestToken == "" {
		return fmt.Errorf("%w: token pair is required", ErrInvalidRoute)
	}
	if !r.MinAmount.IsPositive() {
		return fmt.Errorf("%w: minAmount must be > 0", ErrInvalidRoute)
	}
	if r.MinAmount.GreaterThan(r.MaxAmount) {
		return fmt.Errorf("%w: minAmount exceeds maxAmount", ErrInvalidRoute)
	}
	return nil
}

// Register adds or replaces a route after validation.
func (reg *Registry) Register(r Route) error {
	if err := validate(r); err != nil {
		return err
	}
	reg.mu.Lock()
	reg.routes[keyOf(r)] = r
	reg.mu.Unlock()
	reg.log.LogRoute("route_registered", map[string]interface{}{
		"src_chain": r.SourceChainID,
		"dst_chain": r.DestChainID,
		"src_token": r.SourceToken,
		"dst_token": r.DestToken,
		"enabled":   r.Enabled,
	})
	return nil
}

// Find returns the route for the given corridor and token pair.
func (reg *Registry) Find(srcChain, dstChain int64, srcToken, dstToken string) (Route, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.routes[routeKey{srcChain, dstChain, srcToken, dstToken}]
	if !ok {
		return Route{}, fmt.Errorf("%w: %d->%d %s/%s", ErrRouteNotFound, srcChain, dstChain, srcToken, dstToken)
	}
	return r, nil
}

// Admissible reports whether amount is within the route's bounds and the
// route is enabled.
func (reg *Registry) Admissible(r Route, amount decimal.Decimal) bool {
	if !r.Enabled {
		return false
	}
	return amount.GreaterThanOrEqual(r.MinAmount) && amount.LessThanOrEqual(r.MaxAmount)
}

// PreviewAdmissibility is the read-only query exposed to the presentation
// layer: it reports whether a proposed amount would pass the creation gate.
func (reg *Registry) PreviewAdmissibility(srcChain, dstChain int64, srcToken, dstToken string, amount decimal.Decimal) (bool, error) {
	r, err := reg.Find(srcChain, dstChain, srcToken, dstToken)
	if err != nil {
		return false, err
	}
	return reg.Admissible(r, amount), nil
}

// SetEnabled flips the enabled flag of an existing route.
func (reg *Registry) SetEnabled(srcChain, dstChain int64, srcToken, dstToken string, enabled bool) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	k := routeKey{srcChain, dstChain, srcToken, dstToken}
	r, ok := reg.routes[k]
	if !ok {
		return fmt.Errorf("%w: %d->%d %s/%s", ErrRouteNotFound, srcChain, dstChain, srcToken, dstToken)
	}
	r.Enabled = enabled
	reg.routes[k] = r
	return nil
}

// Snapshot returns a copy of all registered routes.
func (reg *Registry) Snapshot() []Route {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]Route, 0, len(reg.routes))
	for _, r := range reg.routes {
		out = append(out, r)
	}
	return out
}

// Replace swaps the entire route set, validating every entry first.
// Used by config hot reload.
func (reg *Registry) Replace(routes []Route) error {
	next := make(map[routeKey]Route, len(routes))
	for _, r := range routes {
		if err := validate(r); err != nil {
			return err
		}
		next[keyOf(r)] = r
	}
	reg.mu.Lock()
	reg.routes = next
	reg.mu.Unlock()
	reg.log.LogRoute("routes_replaced", map[string]interface{}{"count": len(routes)})
	return nil
}

func keyOf(r Route) routeKey {
	return routeKey{r.SourceChainID, r.DestChainID, r.SourceToken, r.DestToken}
}
