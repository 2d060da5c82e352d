package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "mock",
			cfg:      &config.Config{ProviderMode: "mock"},
			wantName: "mock",
		},
		{
			name:     "mode is case insensitive",
			cfg:      &config.Config{ProviderMode: " MOCK "},
			wantName: "mock",
		},
		{
			name:     "mock with cache",
			cfg:      &config.Config{ProviderMode: "mock", CacheTTL: 500},
			wantName: "mock+cache",
		},
		{
			name:     "live",
			cfg:      &config.Config{ProviderMode: "live", ProviderURL: "http://localhost:8080", RequestTimeout: 1000, Retries: 1},
			wantName: "live",
		},
		{
			name:    "live without url",
			cfg:     &config.Config{ProviderMode: "live"},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			cfg:     &config.Config{ProviderMode: "paper"},
			wantErr: true,
		},
		{
			name:    "nil config",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(&config.Config{ProviderMode: "mock"}, nil)
	assert.Error(t, err)
}
