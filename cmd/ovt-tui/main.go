package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/config"
	"github.com/otori-vision/ovt-trader/internal/logger"
	"github.com/otori-vision/ovt-trader/internal/provider"
	"github.com/otori-vision/ovt-trader/internal/ui"
	"github.com/otori-vision/ovt-trader/internal/wallet"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file (optional)")
	address := flag.String("address", "", "Wallet address to connect with")
	walletKind := flag.String("wallet", "unisat", "Wallet kind")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// stdout belongs to the alt-screen, logs go to the file only
	logCfg := logger.DefaultConfig()
	logCfg.Debug = cfg.DebugLogging
	logCfg.LogFile = cfg.LogFile
	logCfg.Console = io.Discard
	appLogger := logger.New(logCfg)
	defer func() {
		_ = logger.Sync(appLogger)
	}()

	p, err := provider.New(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	connector, err := wallet.NewStaticConnector(cfg.Network, *address)
	if err != nil {
		log.Fatalf("Invalid wallet address for %s: %v", cfg.Network, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(
		ui.NewTradeModel(p, connector, *walletKind, appLogger),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		appLogger.Error("TUI application failed", zap.Error(err))
		log.Fatalf("TUI application failed: %v", err)
	}
}
