package port

import (
	"context"
	"errors"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

var (
	// ErrNotFound is returned by catalog implementations for unknown product IDs.
	ErrNotFound      = errors.New("not found")
	ErrNegativeStock = errors.New("stock cannot be negative")
)

type Catalog interface {
	// GetStock returns the purchasable quantity of a product
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)

	// GetProduct returns catalog data for a product, with Amount left at zero
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

type CatalogRepository interface {
	Catalog

	// ListProducts returns every product ordered by ID
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// SetStock sets the absolute stock of an existing product
	SetStock(ctx context.Context, productID int64, amount int) error
}
