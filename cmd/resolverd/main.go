package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"swap-resolver-go/config"
	"swap-resolver-go/infrastructure/logger"
	"swap-resolver-go/internal/engine"
	"swap-resolver-go/metrics"
	"swap-resolver-go/order"
	"swap-resolver-go/pricing"
	"swap-resolver-go/route"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus listen address; overrides config when set")
	watch := flag.Bool("watch", true, "hot-reload routes and impact tiers on config change")
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Close()

	addr := cfg.Metrics.Addr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		metrics.StartMetricsServer(addr)
		lg.Info("metrics listening", zap.String("addr", addr))
	}

	sources, streams, err := engine.BuildSources(cfg.Pricing, lg)
	if err != nil {
		lg.Fatal("build price sources", zap.Error(err))
	}
	aggregator := pricing.NewAggregator(sources,
		time.Duration(cfg.Pricing.StalenessSec)*time.Second,
		time.Duration(cfg.Pricing.RequestTimeoutMs)*time.Millisecond,
		lg)

	registry := route.NewRegistry(lg)
	routes, err := engine.BuildRoutes(cfg.Routes)
	if err != nil {
		lg.Fatal("build routes", zap.Error(err))
	}
	if err := registry.Replace(routes); err != nil {
		lg.Fatal("register routes", zap.Error(err))
	}

	manager := order.NewManager(registry, aggregator, lg, order.Config{
		RequireReferencePrice: cfg.Orders.RequireReferencePrice,
		PriceTimeout:          time.Duration(cfg.Orders.PriceTimeoutMs) * time.Millisecond,
	})

	resolver, err := engine.New(engine.Config{
		SweepInterval: time.Duration(cfg.Orders.SweepIntervalSec) * time.Second,
		QuoteInterval: time.Duration(cfg.Orders.QuoteIntervalSec) * time.Second,
	}, engine.Components{
		Manager:    manager,
		Registry:   registry,
		Aggregator: aggregator,
		Streams:    streams,
		Logger:     lg,
	})
	if err != nil {
		lg.Fatal("build engine", zap.Error(err))
	}
	if err := resolver.ApplyConfig(cfg); err != nil {
		lg.Fatal("apply config", zap.Error(err))
	}
	if err := resolver.Start(); err != nil {
		lg.Fatal("start engine", zap.Error(err))
	}

	var watcher *config.Watcher
	if *watch {
		watcher, err = config.NewWatcher(*cfgPath, config.DefaultWatchOptions(), resolver.ApplyConfig, lg)
		if err != nil {
			lg.Fatal("create config watcher", zap.Error(err))
		}
		if err := watcher.Start(); err != nil {
			lg.Fatal("start config watcher", zap.Error(err))
		}
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		lg.Warn("sd_notify failed", zap.Error(err))
	} else if sent {
		lg.Info("sd_notify ready sent")
	}

	lg.Info("resolver daemon running",
		zap.String("env", cfg.Env),
		zap.Int("sources", len(sources)),
		zap.Int("routes", len(routes)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	lg.Info("shutdown signal received", zap.String("signal", sig.String()))

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			lg.Error("stop config watcher", zap.Error(err))
		}
	}
	if err := resolver.Stop(); err != nil {
		lg.Error("stop engine", zap.Error(err))
	}
	lg.Info("resolver daemon exited")
}
