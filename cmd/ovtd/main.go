// ====================================
// File: cmd/ovtd/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/otori-vision/ovt-trader/internal/api"
	"github.com/otori-vision/ovt-trader/internal/config"
	"github.com/otori-vision/ovt-trader/internal/logger"
	"github.com/otori-vision/ovt-trader/internal/nav"
	"github.com/otori-vision/ovt-trader/internal/provider"
)

const networkCheckInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to JSON config file (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, *configPath)
	stop()
	os.Exit(code)
}

// execute runs the daemon and returns the process exit code. Deferred
// logger sync runs before the caller exits.
func execute(ctx context.Context, configPath string) int {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	logCfg := logger.DefaultConfig()
	logCfg.Debug = cfg.DebugLogging
	logCfg.LogFile = cfg.LogFile
	appLogger := logger.New(logCfg)
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("ovtd stopped with error", zap.Error(err))
		return 1
	}
	appLogger.Info("ovtd stopped")
	return 0
}

func run(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) error {
	p, err := provider.New(cfg, appLogger)
	if err != nil {
		return err
	}

	initCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.RequestTimeout)*time.Millisecond)
	info, err := p.GetRuneInfo(initCtx)
	cancel()
	if err != nil {
		return err
	}

	store := nav.NewStore(nav.NewState(uint64(info.MintedSupply)), appLogger)
	handler := api.NewHandler(p, store, appLogger)
	server := api.NewServer(cfg.ListenAddr, &api.Config{
		Handler:        handler,
		Logger:         appLogger,
		RateLimit:      cfg.ServerRateLimit,
		Burst:          cfg.ServerBurst,
		TrustedProxies: cfg.TrustedProxies,
		AdminToken:     cfg.AdminToken,
	})
	if cfg.AdminToken == "" {
		appLogger.Warn("admin_token is not set, treasury writes are disabled")
	}

	appLogger.Info("Starting ovtd",
		zap.String("provider", p.Name()),
		zap.String("network", cfg.Network),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("rune", info.Name))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gCtx)
	})
	g.Go(func() error {
		return nav.WatchNetwork(gCtx, store, p.CheckConnectivity, networkCheckInterval)
	})
	err = g.Wait()

	if cached, ok := p.(*provider.CachedProvider); ok {
		hits, misses := cached.GetStats()
		appLogger.Info("Snapshot cache stats",
			zap.Uint64("hits", hits),
			zap.Uint64("misses", misses))
	}
	return err
}
