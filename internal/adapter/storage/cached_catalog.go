package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

const loadTimeout = 5 * time.Second

// CatalogSource is the system of record behind CachedCatalog.
type CatalogSource interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
	ListStock(ctx context.Context) ([]domain.Stock, error)
	SetStock(ctx context.Context, productID int64, amount int) error
}

// CachedCatalog serves stock from Redis and falls back to the source on a
// miss. Concurrent misses for one product share a single source query.
type CachedCatalog struct {
	next  CatalogSource
	cache *RedisAdapter
	ttl   time.Duration
	log   *logrus.Logger
	sf    singleflight.Group
}

func NewCachedCatalog(next CatalogSource, cache *RedisAdapter, ttl time.Duration, log *logrus.Logger) *CachedCatalog {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedCatalog{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *CachedCatalog) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	return c.next.GetProduct(ctx, productID)
}

func (c *CachedCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.next.ListProducts(ctx)
}

func (c *CachedCatalog) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	amount, ok, err := c.cache.GetStock(ctx, productID)
	if err != nil {
		c.log.WithError(err).WithField("product_id", productID).Warn("stock cache read failed, using source")
	}
	if ok {
		return domain.Stock{ID: productID, Amount: amount}, nil
	}

	ch := c.sf.DoChan("load_stock:"+strconv.FormatInt(productID, 10), func() (interface{}, error) {
		// Shared by all waiting callers; not tied to the one that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		stock, err := c.next.GetStock(loadCtx, productID)
		if err != nil {
			return nil, err
		}
		if _, err := c.cache.SetStockNX(loadCtx, productID, stock.Amount, c.ttl); err != nil {
			c.log.WithError(err).WithField("product_id", productID).Warn("stock cache write failed")
		}
		return stock, nil
	})

	select {
	case <-ctx.Done():
		return domain.Stock{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Stock{}, res.Err
		}
		return res.Val.(domain.Stock), nil
	}
}

// SetStock updates the source and drops the cached value.
func (c *CachedCatalog) SetStock(ctx context.Context, productID int64, amount int) error {
	if err := c.next.SetStock(ctx, productID, amount); err != nil {
		return err
	}
	if err := c.cache.DeleteStock(ctx, productID); err != nil {
		return fmt.Errorf("invalidate stock %d: %w", productID, err)
	}
	return nil
}

// Warm copies every stock row from the source into the cache.
func (c *CachedCatalog) Warm(ctx context.Context) (int, error) {
	stock, err := c.next.ListStock(ctx)
	if err != nil {
		return 0, err
	}
	for _, s := range stock {
		if err := c.cache.SetStock(ctx, s.ID, s.Amount, c.ttl); err != nil {
			return 0, fmt.Errorf("cache stock %d: %w", s.ID, err)
		}
	}
	return len(stock), nil
}
