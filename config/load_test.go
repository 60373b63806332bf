package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
env: test
log:
  level: info
  outputs: [stdout]
  format: json
metrics:
  addr: ":9090"
orders:
  sweepIntervalSec: 5
  quoteIntervalSec: 2
  requireReferencePrice: false
  priceTimeoutMs: 3000
pricing:
  stalenessSec: 30
  requestTimeoutMs: 3000
  impact:
    minimalPct: "0.1"
    lowPct: "0.5"
    moderatePct: "1"
    highPct: "2"
  sources:
    - name: chainlink-mainnet
      type: oracle
      trustTier: 0
      endpoint: https://rpc.example.org
      oracleAddress: "0x5f4ec3df9cbd43714fe2740f5e3616155c5b8419"
    - name: dex-agg
      type: aggregator
      trustTier: 1
      endpoint: https://api.example.org
      apiKey: local-key
    - name: bridge-leg
      type: bridge
      trustTier: 2
      inner: dex-agg
      bridgeRate: "1"
      mappings:
        - homeToken: "0xHOME"
          homeChainId: 1
          remoteToken: "0xREMOTE"
          remoteChainId: 56
routes:
  - sourceChainId: 1
    destChainId: 56
    sourceToken: "0xWETH"
    destToken: "0xUSDC"
    bridgeToken: "0xBRIDGE"
    minAmount: "1000000"
    maxAmount: "1000000000000"
    enabled: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, 5, cfg.Orders.SweepIntervalSec)
	require.Len(t, cfg.Pricing.Sources, 3)
	assert.Equal(t, "oracle", cfg.Pricing.Sources[0].Type)
	assert.Equal(t, "dex-agg", cfg.Pricing.Sources[2].Inner)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, "1000000", cfg.Routes[0].MinAmount)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RESOLVER_PRICE_API_KEY", "env-key")

	cfg, err := LoadWithEnvOverrides(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Pricing.Sources[1].APIKey, "aggregator sources take the env key")
	assert.Empty(t, cfg.Pricing.Sources[0].APIKey, "oracle sources are untouched")
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() AppConfig {
		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"missing env", func(c *AppConfig) { c.Env = "" }},
		{"no sources", func(c *AppConfig) { c.Pricing.Sources = nil }},
		{"unknown source type", func(c *AppConfig) { c.Pricing.Sources[0].Type = "carrier-pigeon" }},
		{"duplicate source name", func(c *AppConfig) { c.Pricing.Sources[1].Name = c.Pricing.Sources[0].Name }},
		{"bridge without inner", func(c *AppConfig) { c.Pricing.Sources[2].Inner = "" }},
		{"bridge inner unknown", func(c *AppConfig) { c.Pricing.Sources[2].Inner = "ghost" }},
		{"bridge without mappings", func(c *AppConfig) { c.Pricing.Sources[2].Mappings = nil }},
		{"oracle without address", func(c *AppConfig) { c.Pricing.Sources[0].OracleAddr = "" }},
		{"route same chain", func(c *AppConfig) { c.Routes[0].DestChainID = c.Routes[0].SourceChainID }},
		{"route min zero", func(c *AppConfig) { c.Routes[0].MinAmount = "0" }},
		{"route min above max", func(c *AppConfig) { c.Routes[0].MinAmount = "2000000000000" }},
		{"route bad amount", func(c *AppConfig) { c.Routes[0].MinAmount = "lots" }},
		{"bad impact pct", func(c *AppConfig) { c.Pricing.Impact.HighPct = "two" }},
		{"negative staleness", func(c *AppConfig) { c.Pricing.StalenessSec = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
