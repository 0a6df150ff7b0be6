package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/shoes-cart/internal/adapter/notify"
	"github.com/rl1809/shoes-cart/internal/adapter/storage"
	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/core/service"
	"github.com/rl1809/shoes-cart/internal/logging"
	"github.com/rl1809/shoes-cart/internal/port"
)

const (
	redisAddr     = "localhost:6379"
	cartKey       = port.DefaultCartKey + ":stress"
	productID     = int64(1)
	initialStock  = 20
	totalRequests = 50
)

// redisCatalog reads stock from the stock cache and serves one fixed product.
type redisCatalog struct {
	cache *storage.RedisAdapter
}

func (c redisCatalog) GetStock(ctx context.Context, id int64) (domain.Stock, error) {
	amount, ok, err := c.cache.GetStock(ctx, id)
	if err != nil {
		return domain.Stock{}, err
	}
	if !ok {
		return domain.Stock{}, port.ErrNotFound
	}
	return domain.Stock{ID: id, Amount: amount}, nil
}

func (c redisCatalog) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{ID: id, Title: "Stress Sneaker", Price: 99.9}, nil
}

func main() {
	ctx := context.Background()
	log := logging.New(os.Stderr, "error", "text")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Clear previous test data
	rdb.Del(ctx, cartKey)

	adapter := storage.NewRedisAdapter(rdb, cartKey, log)
	if err := adapter.SetStock(ctx, productID, initialStock, 0); err != nil {
		log.Fatalf("failed to set stock: %v", err)
	}

	cartService := service.NewCartService(ctx, redisCatalog{cache: adapter}, adapter, notify.NewLogNotifier(log), log)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := cartService.AddProduct(ctx, productID); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Stock:            %d\n", initialStock)
	fmt.Printf("Total Adds:       %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Rejected:         %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: %d adds succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	// Verify the persisted cart
	persisted, err := adapter.Load(ctx)
	if err != nil {
		log.Fatalf("failed to reload cart: %v", err)
	}
	item, _ := persisted.Find(productID)
	fmt.Printf("Persisted Amount: %d\n", item.Amount)

	if item.Amount == initialStock {
		fmt.Println("PASS: Cart amount equals stock")
	} else {
		fmt.Printf("FAIL: Expected amount %d, got %d\n", initialStock, item.Amount)
	}
}
