package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

func newFileAdapter(t *testing.T, key string) (*FileAdapter, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storage", "local.json")
	log, _ := test.NewNullLogger()
	return NewFileAdapter(path, key, log), path
}

func TestFileAdapter_LoadMissingFile(t *testing.T) {
	adapter, _ := newFileAdapter(t, port.DefaultCartKey)

	cart, err := adapter.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, cart)
}

func TestFileAdapter_RoundTrip(t *testing.T) {
	adapter, _ := newFileAdapter(t, port.DefaultCartKey)
	ctx := context.Background()

	cart := domain.Cart{
		{ID: 2, Title: "Tênis VR Caminhada", Price: 139.9, Image: "https://example.com/2.jpg", Amount: 3},
		{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Image: "https://example.com/1.jpg", Amount: 1},
	}
	require.NoError(t, adapter.Save(ctx, cart))

	got, err := adapter.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, cart, got)
}

func TestFileAdapter_ReloadFromNewInstance(t *testing.T) {
	adapter, path := newFileAdapter(t, port.DefaultCartKey)
	ctx := context.Background()

	cart := domain.Cart{{ID: 5, Title: "Tênis Nike", Amount: 2}}
	require.NoError(t, adapter.Save(ctx, cart))

	log, _ := test.NewNullLogger()
	reloaded, err := NewFileAdapter(path, port.DefaultCartKey, log).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, cart, reloaded)
}

func TestFileAdapter_KeepsOtherKeys(t *testing.T) {
	adapter, path := newFileAdapter(t, port.DefaultCartKey)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"@Other:theme":"dark"}`), 0o644))

	require.NoError(t, adapter.Save(ctx, domain.Cart{{ID: 1, Amount: 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Equal(t, "dark", entries["@Other:theme"])
	require.JSONEq(t, `[{"id":1,"title":"","price":0,"image":"","amount":1}]`, entries[port.DefaultCartKey])
}

func TestFileAdapter_SeparateKeys(t *testing.T) {
	first, path := newFileAdapter(t, "@Shop:cart")
	log, _ := test.NewNullLogger()
	second := NewFileAdapter(path, "@Other:cart", log)
	ctx := context.Background()

	require.NoError(t, first.Save(ctx, domain.Cart{{ID: 1, Amount: 1}}))
	require.NoError(t, second.Save(ctx, domain.Cart{{ID: 2, Amount: 2}}))

	got, err := first.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Cart{{ID: 1, Amount: 1}}, got)
}

func TestFileAdapter_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken file", `{"@RocketShoes:cart": [`},
		{"broken cart value", `{"@RocketShoes:cart":"[{\"id\":1,"}`},
		{"zero amount", `{"@RocketShoes:cart":"[{\"id\":1,\"amount\":0}]"}`},
		{"empty file", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, path := newFileAdapter(t, port.DefaultCartKey)
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cart, err := adapter.Load(context.Background())
			require.NoError(t, err)
			require.Empty(t, cart)
		})
	}
}

func TestFileAdapter_SaveOverMalformedFile(t *testing.T) {
	adapter, path := newFileAdapter(t, port.DefaultCartKey)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0o644))

	// Load alone leaves the file in place.
	got, err := adapter.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoFileExists(t, path+".corrupt")

	require.NoError(t, adapter.Save(ctx, domain.Cart{{ID: 4, Amount: 1}}))

	got, err = adapter.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Cart{{ID: 4, Amount: 1}}, got)

	moved, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	require.Equal(t, "garbage", string(moved))
}
