package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/adapter/client"
	"github.com/rl1809/shoes-cart/internal/adapter/notify"
	"github.com/rl1809/shoes-cart/internal/adapter/storage"
	"github.com/rl1809/shoes-cart/internal/config"
	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/core/service"
	"github.com/rl1809/shoes-cart/internal/logging"
	"github.com/rl1809/shoes-cart/internal/port"
)

const usage = `usage: cart [flags] <command>

commands:
  list                       show the cart
  add <product-id>           add one unit of a product
  remove <product-id>        remove a product from the cart
  update <product-id> <qty>  set the quantity of a product

flags:
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.LoadCart()

	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.CatalogURL, "catalog", cfg.CatalogURL, "storefront API base URL")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "cart storage backend: file or redis")
	fs.StringVar(&cfg.StoragePath, "file", cfg.StoragePath, "local storage file")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "storage key of the cart")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "redis address for -storage=redis")
	fs.StringVar(&cfg.Timeout, "timeout", cfg.Timeout, "storefront API request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)

	cartStorage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "open storage: %v\n", err)
		return 1
	}
	defer closeStorage()

	catalog, err := client.NewCatalogClient(cfg.CatalogURL, &http.Client{Timeout: cfg.HTTPTimeout}, log)
	if err != nil {
		fmt.Fprintf(stderr, "catalog client: %v\n", err)
		return 1
	}

	toasts := &notify.Recorder{}
	svc := service.NewCartService(ctx, catalog, cartStorage, notify.Multi{toasts, notify.NewLogNotifier(log)}, log)

	err = execute(ctx, svc, fs.Args())
	if errors.Is(err, errUsage) {
		fs.Usage()
		return 2
	}

	for _, msg := range toasts.Drain() {
		fmt.Fprintf(stderr, "! %s\n", msg)
	}
	printCart(stdout, svc.Cart())

	if err != nil {
		return 1
	}
	return 0
}

func execute(ctx context.Context, svc *service.CartService, args []string) error {
	switch {
	case args[0] == "list" && len(args) == 1:
		return nil
	case args[0] == "add" && len(args) == 2:
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return svc.AddProduct(ctx, id)
	case args[0] == "remove" && len(args) == 2:
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return svc.RemoveProduct(ctx, id)
	case args[0] == "update" && len(args) == 3:
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("%w: quantity %q", errUsage, args[2])
		}
		return svc.UpdateProductAmount(ctx, service.UpdateProductAmount{ProductID: id, Amount: amount})
	default:
		return errUsage
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: product id %q", errUsage, raw)
	}
	return id, nil
}

func openStorage(ctx context.Context, cfg config.Cart, log *logrus.Logger) (port.CartStorage, func(), error) {
	switch cfg.Storage {
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return storage.NewRedisAdapter(rdb, cfg.StorageKey, log), func() { rdb.Close() }, nil
	case config.StorageFile:
		return storage.NewFileAdapter(cfg.StoragePath, cfg.StorageKey, log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func printCart(w io.Writer, cart domain.Cart) {
	if len(cart) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tQTY\tSUBTOTAL")

	var total float64
	for _, p := range cart {
		subtotal := p.Price * float64(p.Amount)
		total += subtotal
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%.2f\n", p.ID, p.Title, p.Price, p.Amount, subtotal)
	}
	fmt.Fprintf(tw, "\t\t\t\t%.2f\n", total)
	tw.Flush()
}
