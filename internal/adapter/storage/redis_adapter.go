package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

const stockKeyPrefix = "stock:"

// RedisAdapter keeps the serialized cart under a single namespaced key and,
// for the catalog server, caches stock under stock:<id> keys.
type RedisAdapter struct {
	client  *redis.Client
	cartKey string
	log     *logrus.Logger
}

func NewRedisAdapter(client *redis.Client, cartKey string, log *logrus.Logger) *RedisAdapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisAdapter{client: client, cartKey: cartKey, log: log}
}

func (r *RedisAdapter) Load(ctx context.Context) (domain.Cart, error) {
	data, err := r.client.Get(ctx, r.cartKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.cartKey, err)
	}
	return decodeCart(data, r.log), nil
}

func (r *RedisAdapter) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.cartKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.cartKey, err)
	}
	return nil
}

// GetStock reads a cached stock amount. ok is false on a cache miss.
func (r *RedisAdapter) GetStock(ctx context.Context, productID int64) (amount int, ok bool, err error) {
	amount, err = r.client.Get(ctx, stockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, productID int64, amount int, ttl time.Duration) error {
	return r.client.Set(ctx, stockKey(productID), amount, ttl).Err()
}

// SetStockNX writes the stock only if no value is cached yet, so a slow loader
// cannot overwrite a fresher value.
func (r *RedisAdapter) SetStockNX(ctx context.Context, productID int64, amount int, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, stockKey(productID), amount, ttl).Result()
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, productID int64) error {
	return r.client.Del(ctx, stockKey(productID)).Err()
}

func stockKey(productID int64) string {
	return stockKeyPrefix + strconv.FormatInt(productID, 10)
}
