package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

const defaultTimeout = 5 * time.Second

// CatalogClient calls the storefront API for stock and product data.
type CatalogClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     *logrus.Logger
	cb      *gobreaker.CircuitBreaker
	sf      singleflight.Group
}

// Option configures a CatalogClient.
type Option func(*CatalogClient)

// WithBreakerSettings replaces the default circuit breaker settings.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *CatalogClient) {
		c.cb = gobreaker.NewCircuitBreaker(st)
	}
}

func NewCatalogClient(baseURL string, httpClient *http.Client, log *logrus.Logger, opts ...Option) (*CatalogClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	timeout := httpClient.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &CatalogClient{baseURL: u, http: httpClient, timeout: timeout, log: log}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "CatalogAPI",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	})
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *CatalogClient) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var stock domain.Stock
	if err := c.get(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return domain.Stock{}, err
	}
	return stock, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return domain.Product{}, err
	}
	product.Amount = 0
	return product, nil
}

// get collapses concurrent requests for the same path and runs each through
// the circuit breaker. A 404 does not count as a breaker failure. The shared
// request is detached from the caller's cancellation and bounded by timeout; each caller still stops waiting when its own ctx ends.
func (c *CatalogClient) get(ctx context.Context, path string, out interface{}) error {
	ch := c.sf.DoChan(path, func() (interface{}, error) {
		return c.cb.Execute(func() (interface{}, error) {
			reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
			defer cancel()
			return c.fetch(reqCtx, path)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}

	if errors.Is(res.Err, gobreaker.ErrOpenState) || errors.Is(res.Err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("catalog API unavailable: %w", res.Err)
	}
	if res.Err != nil {
		return res.Err
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *CatalogClient) fetch(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog API: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"http.req.path":     path,
		"http.resp.status":  resp.StatusCode,
		"http.resp.took_ms": time.Since(start).Milliseconds(),
	}).Debug("catalog request complete")

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, port.ErrNotFound)
	default:
		return nil, fmt.Errorf("catalog API %s: unexpected status %s", path, resp.Status)
	}
}

func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, port.ErrNotFound)
}
