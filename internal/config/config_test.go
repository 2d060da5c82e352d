// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "provider_mode": "live",
    "provider_url": "https://api.otori.example",
    "request_timeout": 5000,
    "retries": 2,
    "rate_limit": 5,
    "cache_ttl": 1500,
    "listen_addr": ":9090",
    "server_rate_limit": 3,
    "server_burst": 6,
    "network": "bitcoin",
    "debug_logging": true
}`

var invalidConfigJSON = `{
    "provider_mode": "live",
    "provider_url": "",
    "request_timeout": -1
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "live", cfg.ProviderMode)
				assert.Equal(t, "https://api.otori.example", cfg.ProviderURL)
				assert.Equal(t, 5000, cfg.RequestTimeout)
				assert.Equal(t, 2, cfg.Retries)
				assert.Equal(t, 1500, cfg.CacheTTL)
				assert.Equal(t, ":9090", cfg.ListenAddr)
				assert.Equal(t, "mainnet", cfg.Network)
				assert.True(t, cfg.DebugLogging)
			},
		},
		{
			name:    "Defaults fill missing fields",
			content: `{"provider_mode": "mock"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
				assert.Equal(t, DefaultRetries, cfg.Retries)
				assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
				assert.Equal(t, DefaultServerBurst, cfg.ServerBurst)
				assert.Equal(t, "testnet", cfg.Network)
			},
		},
		{
			name:    "Invalid config - live without URL",
			content: invalidConfigJSON,
			wantErr: true,
		},
		{
			name:    "Invalid config - unknown mode",
			content: `{"provider_mode": "paper"}`,
			wantErr: true,
		},
		{
			name:    "Invalid config - bad URL protocol",
			content: `{"provider_mode": "live", "provider_url": "ftp://example.com"}`,
			wantErr: true,
		},
		{
			name:    "Invalid config - negative retries",
			content: `{"retries": -2}`,
			wantErr: true,
		},
		{
			name:    "Trusted proxies and admin token",
			content: `{"trusted_proxies": ["10.0.0.0/8", "127.0.0.1"], "admin_token": "s3cret"}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
				assert.Equal(t, "s3cret", cfg.AdminToken)
			},
		},
		{
			name:    "No trusted proxies by default",
			content: `{}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.TrustedProxies)
				assert.Empty(t, cfg.AdminToken)
			},
		},
		{
			name:    "Invalid config - bad trusted proxy",
			content: `{"trusted_proxies": ["10.0.0.0/33"]}`,
			wantErr: true,
		},
		{
			name:    "Invalid config - trusted proxy is not an IP",
			content: `{"trusted_proxies": ["proxy.local"]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProviderMode, cfg.ProviderMode)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OVT_PROVIDER_MODE", "LIVE")
	t.Setenv("OVT_PROVIDER_URL", "http://localhost:8080")
	t.Setenv("OVT_RETRIES", "7")

	cfg, err := LoadConfig(writeConfig(t, `{"provider_mode": "mock", "retries": 1}`))
	require.NoError(t, err)
	assert.Equal(t, "live", cfg.ProviderMode)
	assert.Equal(t, "http://localhost:8080", cfg.ProviderURL)
	assert.Equal(t, 7, cfg.Retries)
}

func TestAdminTokenFromEnvironment(t *testing.T) {
	t.Setenv("OVT_ADMIN_TOKEN", "from-env")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AdminToken)
}

func TestNormalizeNetwork(t *testing.T) {
	cases := map[string]string{
		"testnet": "testnet",
		"REGTEST": "regtest",
		"bitcoin": "mainnet",
		"mainnet": "mainnet",
		"signet":  "testnet",
		"":        "testnet",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeNetwork(in), "input %q", in)
	}
}
