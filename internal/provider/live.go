// =============================
// File: internal/provider/live.go
// =============================
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/otori-vision/ovt-trader/internal/market"
)

const (
	defaultLiveTimeout   = 10 * time.Second
	defaultRetryInterval = 500 * time.Millisecond
	maxRetryInterval     = 5 * time.Second
	defaultRateBurst     = 10
)

// LiveConfig параметры REST-клиента
type LiveConfig struct {
	BaseURL       string
	Timeout       time.Duration
	Retries       int
	RateLimit     float64 // запросов в секунду, 0 - без ограничения
	RetryInterval time.Duration
}

// StatusError is returned for a non-200 response from the backend.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Temporary reports whether the failure is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// LiveProvider читает торговые данные из REST API бэкенда.
type LiveProvider struct {
	baseURL       string
	client        *http.Client
	limiter       *rate.Limiter
	retries       int
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewLiveProvider validates the config and builds the REST client.
func NewLiveProvider(cfg LiveConfig, logger *zap.Logger) (*LiveProvider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid provider URL %q", cfg.BaseURL)
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return nil, fmt.Errorf("invalid provider URL protocol %q", parsed.Scheme)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("invalid retries count %d", cfg.Retries)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLiveTimeout
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &LiveProvider{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		client:        &http.Client{Timeout: timeout},
		limiter:       rate.NewLimiter(limit, defaultRateBurst),
		retries:       cfg.Retries,
		retryInterval: interval,
		logger:        logger.Named("live_provider"),
	}, nil
}

func (p *LiveProvider) Name() string {
	return "live"
}

func (p *LiveProvider) GetRuneInfo(ctx context.Context) (*market.RuneInfo, error) {
	var info market.RuneInfo
	if err := p.getJSON(ctx, "/v1/rune", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (p *LiveProvider) GetRuneBalances(ctx context.Context) ([]market.RuneBalance, error) {
	var balances []market.RuneBalance
	if err := p.getJSON(ctx, "/v1/balances", &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

func (p *LiveProvider) GetDistributionStats(ctx context.Context) (*market.DistributionStats, error) {
	var stats market.DistributionStats
	if err := p.getJSON(ctx, "/v1/distribution", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (p *LiveProvider) GetLPInfo(ctx context.Context) (*market.LPInfo, error) {
	var lp market.LPInfo
	if err := p.getJSON(ctx, "/v1/lp", &lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

func (p *LiveProvider) GetTransactionHistory(ctx context.Context) ([]market.Transaction, error) {
	var txs []market.Transaction
	if err := p.getJSON(ctx, "/v1/transactions", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (p *LiveProvider) GetTransactionInfo(ctx context.Context, id string) (*market.Transaction, error) {
	var tx market.Transaction
	if err := p.getJSON(ctx, "/v1/transactions/"+url.PathEscape(id), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CheckConnectivity делает одну попытку без повторов.
func (p *LiveProvider) CheckConnectivity(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("Connectivity check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// EstimatePriceImpact считает цену локально по резервам пула;
// недоступность бэкенда даёт фиксированную цену 750 / 650.
func (p *LiveProvider) EstimatePriceImpact(ctx context.Context, amount float64, isBuy bool) float64 {
	lp, err := p.GetLPInfo(ctx)
	if err != nil {
		p.logger.Warn("Using fallback price, LP info unavailable",
			zap.Float64("amount", amount),
			zap.Bool("is_buy", isBuy),
			zap.Error(err))
		return market.FallbackPrice(isBuy)
	}
	return market.EstimatePriceImpact(lp.RuneReserve, lp.BTCReserveSats, amount, isBuy)
}

// getJSON выполняет GET с ограничением частоты и экспоненциальными повторами.
// Повторяются только сетевые ошибки и ответы 5xx/429.
func (p *LiveProvider) getJSON(ctx context.Context, path string, out any) error {
	operation := func() (struct{}, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if statusErr.Temporary() {
				return struct{}{}, statusErr
			}
			return struct{}{}, backoff.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to decode %s: %w", path, err))
		}
		return struct{}{}, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = p.retryInterval
	expBackoff.MaxInterval = maxRetryInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(p.retries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Warn("Retrying provider request",
				zap.String("path", path),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("provider request %s failed: %w", path, err)
	}
	return nil
}
