package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swap-resolver-go/config"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/order"
	"swap-resolver-go/pricing"
	"swap-resolver-go/route"
)

func testComponents(t *testing.T) Components {
	t.Helper()
	reg := route.NewRegistry(logger.NewNop())
	mgr := order.NewManager(reg, nil, logger.NewNop(), order.Config{})
	return Components{
		Manager:  mgr,
		Registry: reg,
		Logger:   logger.NewNop(),
	}
}

func TestNewRequiresComponents(t *testing.T) {
	_, err := New(Config{}, Components{})
	assert.Error(t, err)

	_, err = New(Config{}, testComponents(t))
	assert.NoError(t, err)
}

func TestStartStopLifecycle(t *testing.T) {
	r, err := New(Config{SweepInterval: 10 * time.Millisecond, QuoteInterval: 10 * time.Millisecond}, testComponents(t))
	require.NoError(t, err)

	assert.Equal(t, StateIdle, r.State())
	require.NoError(t, r.Start())
	assert.Equal(t, StateRunning, r.State())
	assert.Error(t, r.Start(), "double start must fail")

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, r.Stop())
	assert.Equal(t, StateStopped, r.State())
	require.NoError(t, r.Stop(), "stop is idempotent")
}

func TestApplyConfigReplacesRoutesAndTiers(t *testing.T) {
	comps := testComponents(t)
	r, err := New(Config{}, comps)
	require.NoError(t, err)

	cfg := config.AppConfig{
		Pricing: config.PricingConfig{
			Impact: config.ImpactConfig{HighPct: "3"},
		},
		Routes: []config.RouteConfig{{
			SourceChainID: 1,
			DestChainID:   56,
			SourceToken:   "0xWETH",
			DestToken:     "0xUSDC",
			MinAmount:     "1000000",
			MaxAmount:     "1000000000000",
			Enabled:       true,
		}},
	}
	require.NoError(t, r.ApplyConfig(cfg))

	found, err := comps.Registry.Find(1, 56, "0xWETH", "0xUSDC")
	require.NoError(t, err)
	assert.True(t, found.Enabled)
	assert.True(t, r.ImpactTiers().HighPct.Equal(decimal.NewFromInt(3)))
	assert.True(t, r.ImpactTiers().LowPct.Equal(decimal.RequireFromString("0.5")), "unset tiers keep defaults")
}

func TestApplyConfigRejectsBadRoutes(t *testing.T) {
	r, err := New(Config{}, testComponents(t))
	require.NoError(t, err)

	cfg := config.AppConfig{
		Routes: []config.RouteConfig{{
			SourceChainID: 1,
			DestChainID:   56,
			SourceToken:   "0xWETH",
			DestToken:     "0xUSDC",
			MinAmount:     "not-a-number",
			MaxAmount:     "10",
		}},
	}
	assert.Error(t, r.ApplyConfig(cfg))
}

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) ResolveRate(ctx context.Context, srcToken string, srcChain int64, dstToken string, dstChain int64) (pricing.Rate, error) {
	return pricing.Rate{Rate: f.rate}, nil
}

func TestQuoteImpact(t *testing.T) {
	reg := route.NewRegistry(logger.NewNop())
	mgr := order.NewManager(reg, fixedRate{rate: decimal.RequireFromString("1.1")}, logger.NewNop(), order.Config{})
	r, err := New(Config{}, Components{Manager: mgr, Registry: reg, Logger: logger.NewNop()})
	require.NoError(t, err)

	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	o, err := mgr.Create(context.Background(), order.Intent{
		Maker:        "0xmaker",
		Source:       order.Asset{Token: "0xWETH", ChainID: 1},
		Dest:         order.Asset{Token: "0xUSDC", ChainID: 1},
		SourceAmount: decimal.NewFromInt(100),
		StartPrice:   decimal.RequireFromString("1.2"),
		EndPrice:     decimal.RequireFromString("1.0"),
		Kind:         order.KindDutchAuction,
		CreatedAt:    created,
		ExpiresAt:    created.Add(300 * time.Second),
	})
	require.NoError(t, err)

	// At creation the decayed price equals the start price: |1.2-1.1|/1.1
	// is about 9%, well past the 2% boundary.
	level, err := r.QuoteImpact(o.ID, created)
	require.NoError(t, err)
	assert.Equal(t, pricing.ImpactVeryHigh, level)

	// Halfway through the decay the price meets the reference exactly.
	level, err = r.QuoteImpact(o.ID, created.Add(150*time.Second))
	require.NoError(t, err)
	assert.Equal(t, pricing.ImpactMinimal, level)

	_, err = r.QuoteImpact("missing", created)
	assert.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	cfg := config.PricingConfig{
		Sources: []config.SourceConfig{
			{Name: "oracle-a", Type: "oracle", TrustTier: 0, Endpoint: "https://rpc.example.org", OracleAddr: "0xfeed"},
			{Name: "agg-b", Type: "aggregator", TrustTier: 1, Endpoint: "https://api.example.org", APIKey: "k"},
			{Name: "ws-c", Type: "stream", TrustTier: 1, Endpoint: "wss://feed.example.org"},
			{Name: "bridge-d", Type: "bridge", TrustTier: 2, Inner: "agg-b", BridgeRate: "1", Mappings: []config.MappingConfig{
				{HomeToken: "0xH", HomeChainID: 1, RemoteToken: "0xR", RemoteChainID: 56},
			}},
		},
	}

	sources, streams, err := BuildSources(cfg, logger.NewNop())
	require.NoError(t, err)
	require.Len(t, sources, 4)
	require.Len(t, streams, 1)

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"oracle-a", "agg-b", "ws-c", "bridge-d"}, names)

	var bridge *pricing.BridgeRateSource
	for _, s := range sources {
		if b, ok := s.(*pricing.BridgeRateSource); ok {
			bridge = b
		}
	}
	require.NotNil(t, bridge)
	assert.Equal(t, "agg-b", bridge.Inner.Name())
}

func TestBuildSourcesUnknownInner(t *testing.T) {
	cfg := config.PricingConfig{
		Sources: []config.SourceConfig{
			{Name: "bridge-d", Type: "bridge", TrustTier: 2, Inner: "ghost", Mappings: []config.MappingConfig{
				{HomeToken: "0xH", HomeChainID: 1, RemoteToken: "0xR", RemoteChainID: 56},
			}},
		},
	}
	_, _, err := BuildSources(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestBuildImpactTiersDefaults(t *testing.T) {
	tiers, err := BuildImpactTiers(config.ImpactConfig{})
	require.NoError(t, err)
	assert.True(t, tiers.MinimalPct.Equal(decimal.RequireFromString("0.1")))

	_, err = BuildImpactTiers(config.ImpactConfig{LowPct: "half"})
	assert.Error(t, err)
}
