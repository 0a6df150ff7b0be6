package port

import (
	"context"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

// DefaultCartKey namespaces the persisted cart in shared local storage.
const DefaultCartKey = "@RocketShoes:cart"

type CartStorage interface {
	// Load returns the persisted cart, or an empty cart when nothing usable is stored
	Load(ctx context.Context) (domain.Cart, error)

	// Save overwrites the persisted cart
	Save(ctx context.Context, cart domain.Cart) error
}
