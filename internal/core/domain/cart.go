package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateProduct = errors.New("duplicate product in cart")
	ErrInvalidAmount    = errors.New("cart amount must be at least 1")
)

// Cart is an ordered list of line items, unique by product ID.
// Methods never modify the receiver; mutating helpers return a new Cart.
type Cart []Product

func (c Cart) Find(productID int64) (Product, bool) {
	for _, p := range c {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Append(p Product) Cart {
	out := make(Cart, 0, len(c)+1)
	out = append(out, c...)
	return append(out, p)
}

// WithAmount returns a copy with the amount of productID replaced.
func (c Cart) WithAmount(productID int64, amount int) Cart {
	out := c.Clone()
	for i := range out {
		if out[i].ID == productID {
			out[i].Amount = amount
		}
	}
	return out
}

// Without returns a copy with productID filtered out.
func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, p := range c {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports whether the cart holds each product at most once with a
// positive amount.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, p := range c {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: id %d", ErrDuplicateProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Amount < 1 {
			return fmt.Errorf("%w: id %d has %d", ErrInvalidAmount, p.ID, p.Amount)
		}
	}
	return nil
}
