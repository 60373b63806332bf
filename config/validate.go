package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var sourceTypes = map[string]bool{
	"oracle":     true,
	"aggregator": true,
	"bridge":     true,
	"stream":     true,
}

// Validate ensures required fields are present and parseable.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Orders.SweepIntervalSec < 0 {
		return errors.New("orders.sweepIntervalSec must be >= 0")
	}
	if cfg.Orders.QuoteIntervalSec < 0 {
		return errors.New("orders.quoteIntervalSec must be >= 0")
	}
	if cfg.Orders.PriceTimeoutMs < 0 {
		return errors.New("orders.priceTimeoutMs must be >= 0")
	}
	if cfg.Pricing.StalenessSec < 0 {
		return errors.New("pricing.stalenessSec must be >= 0")
	}
	if cfg.Pricing.RequestTimeoutMs < 0 {
		return errors.New("pricing.requestTimeoutMs must be >= 0")
	}
	if len(cfg.Pricing.Sources) == 0 {
		return errors.New("pricing.sources is required")
	}

	names := make(map[string]bool, len(cfg.Pricing.Sources))
	for _, src := range cfg.Pricing.Sources {
		if src.Name == "" {
			return errors.New("source name is required")
		}
		if names[src.Name] {
			return fmt.Errorf("duplicate source name %s", src.Name)
		}
		names[src.Name] = true
		if !sourceTypes[src.Type] {
			return fmt.Errorf("source %s has unknown type %q", src.Name, src.Type)
		}
		if src.TrustTier < 0 {
			return fmt.Errorf("source %s trustTier must be >= 0", src.Name)
		}
		switch src.Type {
		case "bridge":
			if src.Inner == "" {
				return fmt.Errorf("source %s requires inner", src.Name)
			}
			if len(src.Mappings) == 0 {
				return fmt.Errorf("source %s requires mappings", src.Name)
			}
			if src.BridgeRate != "" {
				if _, err := decimal.NewFromString(src.BridgeRate); err != nil {
					return fmt.Errorf("source %s bridgeRate: %w", src.Name, err)
				}
			}
		case "oracle":
			if src.Endpoint == "" || src.OracleAddr == "" {
				return fmt.Errorf("source %s requires endpoint and oracleAddress", src.Name)
			}
		default:
			if src.Endpoint == "" {
				return fmt.Errorf("source %s requires endpoint", src.Name)
			}
		}
	}
	for _, src := range cfg.Pricing.Sources {
		if src.Type == "bridge" && !names[src.Inner] {
			return fmt.Errorf("source %s inner %q is not a configured source", src.Name, src.Inner)
		}
	}

	for i, rc := range cfg.Routes {
		if rc.SourceChainID == rc.DestChainID {
			return fmt.Errorf("route %d: source and destination chain are equal", i)
		}
		if rc.SourceToken == "" || rc.DestToken == "" {
			return fmt.Errorf("route %d: token pair is required", i)
		}
		minAmt, err := decimal.NewFromString(rc.MinAmount)
		if err != nil {
			return fmt.Errorf("route %d minAmount: %w", i, err)
		}
		maxAmt, err := decimal.NewFromString(rc.MaxAmount)
		if err != nil {
			return fmt.Errorf("route %d maxAmount: %w", i, err)
		}
		if !minAmt.IsPositive() {
			return fmt.Errorf("route %d: minAmount must be > 0", i)
		}
		if minAmt.GreaterThan(maxAmt) {
			return fmt.Errorf("route %d: minAmount exceeds maxAmount", i)
		}
	}

	for _, pct := range []struct{ name, v string }{
		{"minimalPct", cfg.Pricing.Impact.MinimalPct},
		{"lowPct", cfg.Pricing.Impact.LowPct},
		{"moderatePct", cfg.Pricing.Impact.ModeratePct},
		{"highPct", cfg.Pricing.Impact.HighPct},
	} {
		if pct.v == "" {
			continue
		}
		if _, err := decimal.NewFromString(pct.v); err != nil {
			return fmt.Errorf("pricing.impact.%s: %w", pct.name, err)
		}
	}

	return nil
}
