package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TokenMapping relates a token on the home chain to its counterpart on a
// remote chain whose market is more liquid.
type TokenMapping struct {
	HomeToken   string
	HomeChainID int64

	RemoteToken   string
	RemoteChainID int64
}

// BridgeRateSource derives a bridge-implied price: it quotes the remote
// counterpart of a mapped token through an inner source and scales it by
// the configured bridge rate. Unmapped pairs are unavailable.
type BridgeRateSource struct {
	SourceName string
	Tier       int
	Inner      Source
	BridgeRate decimal.Decimal // remote->home conversion, typically 1
	Mappings   []TokenMapping
}

func (b *BridgeRateSource) Name() string   { return b.SourceName }
func (b *BridgeRateSource) TrustTier() int { return b.Tier }

// Fetch resolves the remote leg and applies the bridge rate. ObservedAt
// is the remote observation time; the aggregator judges staleness.
func (b *BridgeRateSource) Fetch(ctx context.Context, token string, chainID int64) (Quote, error) {
	if b == nil || b.Inner == nil {
		return Quote{}, fmt.Errorf("%w: inner source not set", ErrUnavailable)
	}

	var mapping *TokenMapping
	for i := range b.Mappings {
		m := &b.Mappings[i]
		if m.HomeToken == token && m.HomeChainID == chainID {
			mapping = m
			break
		}
	}
	if mapping == nil {
		return Quote{}, fmt.Errorf("%w: no bridge mapping for %s on chain %d", ErrUnavailable, token, chainID)
	}

	remote, err := b.Inner.Fetch(ctx, mapping.RemoteToken, mapping.RemoteChainID)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: remote leg: %v", ErrUnavailable, err)
	}

	rate := b.BridgeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	return Quote{
		Token:      token,
		ChainID:    chainID,
		Price:      remote.Price.Mul(rate),
		ObservedAt: remote.ObservedAt,
		Source:     b.SourceName,
		TrustTier:  b.Tier,
	}, nil
}
