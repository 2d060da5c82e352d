// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ProviderMode    string  `mapstructure:"provider_mode"`
	ProviderURL     string  `mapstructure:"provider_url"`
	RequestTimeout  int     `mapstructure:"request_timeout"`
	Retries         int     `mapstructure:"retries"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	CacheTTL        int     `mapstructure:"cache_ttl"`
	ListenAddr      string  `mapstructure:"listen_addr"`
	ServerRateLimit float64 `mapstructure:"server_rate_limit"`
	ServerBurst     int     `mapstructure:"server_burst"`
	Network         string  `mapstructure:"network"`
	DebugLogging    bool    `mapstructure:"debug_logging"`
	LogFile         string  `mapstructure:"log_file"`

	// TrustedProxies: IP/CIDR, чьим X-Forwarded-For можно верить; пусто - никому
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// AdminToken защищает POST /v1/nav и /v1/buyback; пусто - запись отключена
	AdminToken string `mapstructure:"admin_token"`
}

const (
	DefaultProviderMode    = "mock"
	DefaultRequestTimeout  = 10000
	DefaultRetries         = 3
	DefaultRateLimit       = 20.0
	DefaultCacheTTL        = 0
	DefaultListenAddr      = ":8080"
	DefaultServerRateLimit = 10.0
	DefaultServerBurst     = 20
	DefaultNetwork         = "testnet"

	EnvPrefix = "OVT"
)

var defaults = map[string]interface{}{
	"provider_mode":     DefaultProviderMode,
	"provider_url":      "",
	"request_timeout":   DefaultRequestTimeout,
	"retries":           DefaultRetries,
	"rate_limit":        DefaultRateLimit,
	"cache_ttl":         DefaultCacheTTL,
	"listen_addr":       DefaultListenAddr,
	"server_rate_limit": DefaultServerRateLimit,
	"server_burst":      DefaultServerBurst,
	"network":           DefaultNetwork,
	"debug_logging":     false,
	"log_file":          "",
	"trusted_proxies":   []string{},
	"admin_token":       "",
}

// LoadConfig читает JSON-конфиг (если путь задан), затем переменные
// окружения с префиксом OVT_ и файл .env, если он есть.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.ProviderMode = strings.ToLower(strings.TrimSpace(cfg.ProviderMode))
	cfg.Network = NormalizeNetwork(cfg.Network)

	return &cfg, validateConfig(&cfg)
}

// NormalizeNetwork maps a network name onto testnet, regtest or mainnet.
// Unknown names fall back to testnet.
func NormalizeNetwork(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "regtest":
		return "regtest"
	case "bitcoin", "mainnet":
		return "mainnet"
	default:
		return DefaultNetwork
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.ProviderMode {
	case "mock":
	case "live":
		if cfg.ProviderURL == "" {
			return errors.New("provider_url is required in live mode")
		}
		if err := validateURLWithCache(cfg.ProviderURL, "http"); err != nil {
			return errors.New("invalid provider URL protocol")
		}
	default:
		return errors.New("provider_mode must be mock or live")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RateLimit < 0 {
		return errors.New("invalid rate_limit")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("invalid cache_ttl")
	}
	if cfg.ServerRateLimit < 0 {
		return errors.New("invalid server_rate_limit")
	}
	if cfg.ServerBurst <= 0 {
		return errors.New("invalid server_burst")
	}
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	return validateTrustedProxies(cfg.TrustedProxies)
}

func validateTrustedProxies(proxies []string) error {
	for _, proxy := range proxies {
		if strings.Contains(proxy, "/") {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted proxy CIDR %q", proxy)
			}
			continue
		}
		if net.ParseIP(proxy) == nil {
			return fmt.Errorf("invalid trusted proxy IP %q", proxy)
		}
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}
