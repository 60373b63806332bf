package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swap-resolver-go/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	Log     logger.Config `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Orders  OrdersConfig  `yaml:"orders"`
	Pricing PricingConfig `yaml:"pricing"`
	Routes  []RouteConfig `yaml:"routes"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}

type OrdersConfig struct {
	SweepIntervalSec      int  `yaml:"sweepIntervalSec"`
	QuoteIntervalSec      int  `yaml:"quoteIntervalSec"`
	RequireReferencePrice bool `yaml:"requireReferencePrice"`
	PriceTimeoutMs        int  `yaml:"priceTimeoutMs"`
}

type PricingConfig struct {
	StalenessSec     int            `yaml:"stalenessSec"`
	RequestTimeoutMs int            `yaml:"requestTimeoutMs"`
	Impact           ImpactConfig   `yaml:"impact"`
	Sources          []SourceConfig `yaml:"sources"`
}

// ImpactConfig carries price-impact tier boundaries as decimal strings.
// Empty fields fall back to the conventional defaults.
type ImpactConfig struct {
	MinimalPct  string `yaml:"minimalPct"`
	LowPct      string `yaml:"lowPct"`
	ModeratePct string `yaml:"moderatePct"`
	HighPct     string `yaml:"highPct"`
}

// SourceConfig configures one price source adapter.
type SourceConfig struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"` // oracle, aggregator, bridge, stream
	TrustTier  int             `yaml:"trustTier"`
	Endpoint   string          `yaml:"endpoint"`
	APIKey     string          `yaml:"apiKey"`
	OracleAddr string          `yaml:"oracleAddress"`
	Inner      string          `yaml:"inner"`      // bridge: name of the remote-leg source
	BridgeRate string          `yaml:"bridgeRate"` // bridge: remote->home conversion
	Mappings   []MappingConfig `yaml:"mappings"`
}

type MappingConfig struct {
	HomeToken     string `yaml:"homeToken"`
	HomeChainID   int64  `yaml:"homeChainId"`
	RemoteToken   string `yaml:"remoteToken"`
	RemoteChainID int64  `yaml:"remoteChainId"`
}

// RouteConfig configures one cross-chain corridor. Amounts are decimal
// strings to keep large notionals exact.
type RouteConfig struct {
	SourceChainID int64  `yaml:"sourceChainId"`
	DestChainID   int64  `yaml:"destChainId"`
	SourceToken   string `yaml:"sourceToken"`
	DestToken     string `yaml:"destToken"`
	BridgeToken   string `yaml:"bridgeToken"`
	MinAmount     string `yaml:"minAmount"`
	MaxAmount     string `yaml:"maxAmount"`
	Enabled       bool   `yaml:"enabled"`
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from
// env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("RESOLVER_PRICE_API_KEY"); v != "" {
		for i := range cfg.Pricing.Sources {
			if cfg.Pricing.Sources[i].Type == "aggregator" {
				cfg.Pricing.Sources[i].APIKey = v
			}
		}
	}
	return cfg, Validate(cfg)
}
