package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"swap-resolver-go/config"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/pricing"
	"swap-resolver-go/route"
)

// BuildSources constructs price source adapters from config. Bridge
// sources resolve their inner leg by name, so non-bridge sources are
// built first. Stream sources are returned separately; the caller owns
// their Start/Stop lifecycle.
func BuildSources(cfg config.PricingConfig, log *logger.Logger) ([]pricing.Source, []*pricing.StreamSource, error) {
	byName := make(map[string]pricing.Source, len(cfg.Sources))
	var sources []pricing.Source
	var streams []*pricing.StreamSource

	for _, sc := range cfg.Sources {
		var src pricing.Source
		switch sc.Type {
		case "oracle":
			src = &pricing.OracleSource{
				SourceName: sc.Name,
				Endpoint:   sc.Endpoint,
				Oracle:     sc.OracleAddr,
				Tier:       sc.TrustTier,
				HTTPClient: pricing.NewDefaultHTTPClient(),
			}
		case "aggregator":
			src = &pricing.AggregatorAPISource{
				SourceName: sc.Name,
				BaseURL:    sc.Endpoint,
				APIKey:     sc.APIKey,
				Tier:       sc.TrustTier,
				HTTPClient: pricing.NewDefaultHTTPClient(),
			}
		case "stream":
			ss := pricing.NewStreamSource(sc.Name, sc.Endpoint, sc.TrustTier, log)
			streams = append(streams, ss)
			src = ss
		case "bridge":
			continue // second pass, after inner sources exist
		default:
			return nil, nil, fmt.Errorf("source %s: unknown type %q", sc.Name, sc.Type)
		}
		byName[sc.Name] = src
		sources = append(sources, src)
	}

	for _, sc := range cfg.Sources {
		if sc.Type != "bridge" {
			continue
		}
		inner, ok := byName[sc.Inner]
		if !ok {
			return nil, nil, fmt.Errorf("source %s: inner %q not found", sc.Name, sc.Inner)
		}
		rate := decimal.Decimal{}
		if sc.BridgeRate != "" {
			parsed, err := decimal.NewFromString(sc.BridgeRate)
			if err != nil {
				return nil, nil, fmt.Errorf("source %s: bridgeRate: %w", sc.Name, err)
			}
			rate = parsed
		}
		mappings := make([]pricing.TokenMapping, 0, len(sc.Mappings))
		for _, mc := range sc.Mappings {
			mappings = append(mappings, pricing.TokenMapping{
				HomeToken:     mc.HomeToken,
				HomeChainID:   mc.HomeChainID,
				RemoteToken:   mc.RemoteToken,
				RemoteChainID: mc.RemoteChainID,
			})
		}
		sources = append(sources, &pricing.BridgeRateSource{
			SourceName: sc.Name,
			Tier:       sc.TrustTier,
			Inner:      inner,
			BridgeRate: rate,
			Mappings:   mappings,
		})
	}

	return sources, streams, nil
}

// BuildRoutes converts route configs into registry entries.
func BuildRoutes(cfgs []config.RouteConfig) ([]route.Route, error) {
	routes := make([]route.Route, 0, len(cfgs))
	for i, rc := range cfgs {
		minAmt, err := decimal.NewFromString(rc.MinAmount)
		if err != nil {
			return nil, fmt.Errorf("route %d minAmount: %w", i, err)
		}
		maxAmt, err := decimal.NewFromString(rc.MaxAmount)
		if err != nil {
			return nil, fmt.Errorf("route %d maxAmount: %w", i, err)
		}
		routes = append(routes, route.Route{
			SourceChainID: rc.SourceChainID,
			DestChainID:   rc.DestChainID,
			SourceToken:   rc.SourceToken,
			DestToken:     rc.DestToken,
			BridgeToken:   rc.BridgeToken,
			MinAmount:     minAmt,
			MaxAmount:     maxAmt,
			Enabled:       rc.Enabled,
		})
	}
	return routes, nil
}

// BuildImpactTiers parses impact boundaries, falling back to the
// defaults for any field left empty.
func BuildImpactTiers(cfg config.ImpactConfig) (pricing.ImpactTiers, error) {
	tiers := pricing.DefaultImpactTiers()
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{cfg.MinimalPct, &tiers.MinimalPct},
		{cfg.LowPct, &tiers.LowPct},
		{cfg.ModeratePct, &tiers.ModeratePct},
		{cfg.HighPct, &tiers.HighPct},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return pricing.ImpactTiers{}, fmt.Errorf("impact tier %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return tiers, nil
}
