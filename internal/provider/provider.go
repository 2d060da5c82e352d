// =============================
// File: internal/provider/provider.go
// =============================
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/config"
	"github.com/otori-vision/ovt-trader/internal/market"
)

// Provider: единый интерфейс источника торговых данных OVT.
// Реализации: мок на фикстурах и REST-клиент живого бэкенда.
type Provider interface {
	// Name возвращает название источника.
	Name() string
	GetRuneInfo(ctx context.Context) (*market.RuneInfo, error)
	GetRuneBalances(ctx context.Context) ([]market.RuneBalance, error)
	GetDistributionStats(ctx context.Context) (*market.DistributionStats, error)
	GetLPInfo(ctx context.Context) (*market.LPInfo, error)
	// GetTransactionHistory возвращает сделки в порядке добавления.
	GetTransactionHistory(ctx context.Context) ([]market.Transaction, error)
	// GetTransactionInfo никогда не сообщает об отсутствии записи:
	// для неизвестного id синтезируется запись по умолчанию.
	GetTransactionInfo(ctx context.Context, id string) (*market.Transaction, error)
	CheckConnectivity(ctx context.Context) bool
	// EstimatePriceImpact никогда не возвращает ошибку, см. market.EstimatePriceImpact.
	EstimatePriceImpact(ctx context.Context, amount float64, isBuy bool) float64
}

const (
	ModeMock = "mock"
	ModeLive = "live"
)

// New создаёт провайдер по режиму из конфигурации и при cache_ttl > 0
// оборачивает его кэшем снимков.
func New(cfg *config.Config, logger *zap.Logger) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	var p Provider
	mode := strings.ToLower(strings.TrimSpace(cfg.ProviderMode))
	switch mode {
	case ModeMock:
		p = NewMockProvider()
	case ModeLive:
		live, err := NewLiveProvider(LiveConfig{
			BaseURL:   cfg.ProviderURL,
			Timeout:   time.Duration(cfg.RequestTimeout) * time.Millisecond,
			Retries:   cfg.Retries,
			RateLimit: cfg.RateLimit,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("could not create live provider: %w", err)
		}
		p = live
	default:
		return nil, fmt.Errorf("provider mode %s is not supported", cfg.ProviderMode)
	}

	if cfg.CacheTTL > 0 {
		p = NewCachedProvider(p, time.Duration(cfg.CacheTTL)*time.Millisecond, logger)
	}

	logger.Info("Trading data provider ready",
		zap.String("provider", p.Name()),
		zap.String("mode", mode),
		zap.Int("cache_ttl_ms", cfg.CacheTTL))
	return p, nil
}
