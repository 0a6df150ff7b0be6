package storage

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/core/domain"
)

func encodeCart(cart domain.Cart) ([]byte, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// decodeCart never fails: a blob that does not parse, or parses into a cart
// that breaks the cart invariants, is discarded and an empty cart returned.
func decodeCart(data []byte, log *logrus.Logger) domain.Cart {
	if len(data) == 0 {
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		log.WithError(err).Warn("discarding malformed persisted cart")
		return domain.Cart{}
	}
	if cart == nil {
		return domain.Cart{}
	}
	if err := cart.Validate(); err != nil {
		log.WithError(err).Warn("discarding invalid persisted cart")
		return domain.Cart{}
	}
	return cart
}
