package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rl1809/shoes-cart/internal/port"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Server carries environment-driven settings for the catalog API process.
type Server struct {
	HTTPAddr      string
	GRPCAddr      string
	MySQLDSN      string
	RedisAddr     string
	StockCacheTTL time.Duration
	WarmCache     bool
	LogLevel      string
	LogFormat     string
}

// Cart carries settings for the cart CLI. Call Validate once flags have
// been applied on top of the environment.
type Cart struct {
	CatalogURL  string
	Timeout     string
	HTTPTimeout time.Duration // resolved from Timeout by Validate
	Storage     string
	StoragePath string
	StorageKey  string
	RedisAddr   string
	LogLevel    string
	LogFormat   string
}

func LoadServer() (Server, error) {
	cfg := Server{
		HTTPAddr:  envDefault("HTTP_ADDR", ":3333"),
		GRPCAddr:  envDefault("GRPC_ADDR", ":50051"),
		MySQLDSN:  envDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/rocketshoes?parseTime=true"),
		RedisAddr: envDefault("REDIS_ADDR", "localhost:6379"),
		WarmCache: isTruthy(envDefault("WARM_STOCK_CACHE", "true")),
		LogLevel:  envDefault("LOG_LEVEL", "info"),
		LogFormat: envDefault("LOG_FORMAT", "json"),
	}

	ttl, err := envDuration("STOCK_CACHE_TTL", time.Minute)
	if err != nil {
		return Server{}, err
	}
	cfg.StockCacheTTL = ttl

	return cfg, nil
}

func LoadCart() Cart {
	cfg := Cart{
		CatalogURL: envDefault("CATALOG_URL", "http://localhost:3333"),
		Timeout:    envDefault("HTTP_TIMEOUT", "5s"),
		Storage:    envDefault("CART_STORAGE", StorageFile),
		StorageKey: envDefault("CART_STORAGE_KEY", port.DefaultCartKey),
		RedisAddr:  envDefault("REDIS_ADDR", "localhost:6379"),
		LogLevel:   envDefault("LOG_LEVEL", "warn"),
		LogFormat:  envDefault("LOG_FORMAT", "text"),
	}

	cfg.StoragePath = strings.TrimSpace(os.Getenv("CART_STORAGE_PATH"))
	if cfg.StoragePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.StoragePath = filepath.Join(dir, "shoes-cart", "local-storage.json")
	}

	return cfg
}

func (c *Cart) Validate() error {
	timeout, err := parseDuration("HTTP_TIMEOUT", c.Timeout)
	if err != nil {
		return err
	}
	c.HTTPTimeout = timeout

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("CART_STORAGE must be %q or %q, got %q", StorageFile, StorageRedis, c.Storage)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("CART_STORAGE_KEY must not be empty")
	}
	return nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	return parseDuration(key, raw)
}

// parseDuration accepts a Go duration or a number of seconds.
func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("%s must be a positive duration", key)
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
