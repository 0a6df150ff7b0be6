package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/shoes-cart/internal/port"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("STOCK_CACHE_TTL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("WARM_STOCK_CACHE", "")

	cfg, err := LoadServer()
	require.NoError(t, err)
	require.Equal(t, ":3333", cfg.HTTPAddr)
	require.Equal(t, time.Minute, cfg.StockCacheTTL)
	require.True(t, cfg.WarmCache)
}

func TestLoadServer_TTL(t *testing.T) {
	t.Setenv("STOCK_CACHE_TTL", "90")
	cfg, err := LoadServer()
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, cfg.StockCacheTTL)

	t.Setenv("STOCK_CACHE_TTL", "2m")
	cfg, err = LoadServer()
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, cfg.StockCacheTTL)

	t.Setenv("STOCK_CACHE_TTL", "-1s")
	_, err = LoadServer()
	require.Error(t, err)
}

func TestLoadCart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	t.Setenv("CART_STORAGE", "Redis")
	t.Setenv("CART_STORAGE_PATH", path)
	t.Setenv("CART_STORAGE_KEY", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg := LoadCart()
	require.NoError(t, cfg.Validate())
	require.Equal(t, StorageRedis, cfg.Storage)
	require.Equal(t, path, cfg.StoragePath)
	require.Equal(t, port.DefaultCartKey, cfg.StorageKey)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestLoadCart_InvalidEnvDefersToValidate(t *testing.T) {
	t.Setenv("CART_STORAGE", "cookie")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := LoadCart()
	require.Equal(t, "cookie", cfg.Storage)
	require.Error(t, cfg.Validate())

	cfg.Storage = StorageFile
	require.Error(t, cfg.Validate())

	cfg.Timeout = "3"
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
}

func TestCartValidate(t *testing.T) {
	valid := Cart{Timeout: "1s", Storage: "file", StorageKey: port.DefaultCartKey}

	tests := []struct {
		name    string
		mutate  func(c *Cart)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Cart) {}},
		{name: "unknown storage", mutate: func(c *Cart) { c.Storage = "cookie" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Cart) { c.Timeout = "0s" }, wantErr: true},
		{name: "empty key", mutate: func(c *Cart) { c.StorageKey = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, time.Second, cfg.HTTPTimeout)
		})
	}
}

func TestIsTruthy(t *testing.T) {
	require.True(t, isTruthy(" YES "))
	require.True(t, isTruthy("1"))
	require.False(t, isTruthy("off"))
}
