// Package pricing provides price source adapters and the trust-tiered
// aggregator that resolves reference prices over them.
package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable is returned by adapters when the upstream cannot
	// produce a quote (timeout, transport failure, unknown pair). It is
	// absorbed by the aggregator and never surfaced past it.
	ErrUnavailable = errors.New("price unavailable from source")

	// ErrPriceUnavailable is returned by the aggregator when no source
	// produced an acceptable quote.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Quote is one price observation for a (token, chain) pair, denominated
// in the common unit of account.
type Quote struct {
	Token      string
	ChainID    int64
	Price      decimal.Decimal
	ObservedAt time.Time
	Source     string
	TrustTier  int
}

// Source is the uniform adapter contract over heterogeneous price
// providers. Fetch must honor the ctx deadline and return ErrUnavailable
// (possibly wrapped) on any failure; it never fabricates a price and
// never relabels a cached observation as fresh.
type Source interface {
	Name() string
	TrustTier() int
	Fetch(ctx context.Context, token string, chainID int64) (Quote, error)
}
