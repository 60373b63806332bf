package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"swap-resolver-go/config"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/internal/engine"
	"swap-resolver-go/pricing"
)

// quotecheck resolves a single price or pair rate against the configured
// sources and prints the result. Useful for verifying source configs and
// trust-tier fallback before starting the daemon.
func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	token := flag.String("token", "", "token address to price")
	chain := flag.Int64("chain", 1, "chain id of the token")
	dstToken := flag.String("dstToken", "", "destination token; when set, resolves a pair rate")
	dstChain := flag.Int64("dstChain", 1, "chain id of the destination token")
	timeout := flag.Duration("timeout", 5*time.Second, "resolution deadline")
	flag.Parse()

	if *token == "" {
		log.Fatal("-token is required")
	}

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.NewNop()
	sources, streams, err := engine.BuildSources(cfg.Pricing, lg)
	if err != nil {
		log.Fatalf("build sources: %v", err)
	}
	for _, s := range streams {
		s.Start()
	}
	defer func() {
		for _, s := range streams {
			s.Stop()
		}
	}()

	aggregator := pricing.NewAggregator(sources,
		time.Duration(cfg.Pricing.StalenessSec)*time.Second,
		time.Duration(cfg.Pricing.RequestTimeoutMs)*time.Millisecond,
		lg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var out interface{}
	if *dstToken != "" {
		rate, err := aggregator.ResolveRate(ctx, *token, *chain, *dstToken, *dstChain)
		if err != nil {
			log.Fatalf("resolve rate: %v", err)
		}
		out = map[string]interface{}{
			"rate":       rate.Rate.String(),
			"src_price":  rate.Src.Price.String(),
			"src_source": rate.Src.Source,
			"dst_price":  rate.Dst.Price.String(),
			"dst_source": rate.Dst.Source,
		}
	} else {
		quote, err := aggregator.Resolve(ctx, *token, *chain)
		if err != nil {
			log.Fatalf("resolve: %v", err)
		}
		out = map[string]interface{}{
			"token":       quote.Token,
			"chain":       quote.ChainID,
			"price":       quote.Price.String(),
			"source":      quote.Source,
			"trust_tier":  quote.TrustTier,
			"observed_at": quote.ObservedAt.Format(time.RFC3339),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
