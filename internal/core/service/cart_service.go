package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// CartService owns the cart state. Every mutation goes through it.
//
// Operations are serialized: mu is held from the first read of the cart until
// the new state is saved and published, so two concurrent adds cannot lose an
// update. Readers never wait on mu.
type CartService struct {
	catalog  port.Catalog
	storage  port.CartStorage
	notifier port.Notifier
	log      *logrus.Logger

	mu   sync.Mutex
	cart atomic.Pointer[domain.Cart]
}

func NewCartService(ctx context.Context, catalog port.Catalog, storage port.CartStorage, notifier port.Notifier, log *logrus.Logger) *CartService {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &CartService{
		catalog:  catalog,
		storage:  storage,
		notifier: notifier,
		log:      log,
	}

	cart, err := storage.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load persisted cart, starting empty")
		cart = domain.Cart{}
	}
	s.cart.Store(&cart)

	return s
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart() domain.Cart {
	return s.cart.Load().Clone()
}

func (s *CartService) AddProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addProduct(ctx, productID); err != nil {
		s.reject("add", productID, err, MsgAddFailed)
		return err
	}
	return nil
}

func (s *CartService) addProduct(ctx context.Context, productID int64) error {
	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: stock of product %d: %w", ErrLookupFailure, productID, err)
	}

	cart := *s.cart.Load()
	item, inCart := cart.Find(productID)

	amount := item.Amount + 1
	if amount > stock.Amount {
		return fmt.Errorf("%w: product %d requested %d, stock %d", ErrOutOfStock, productID, amount, stock.Amount)
	}

	if inCart {
		return s.commit(ctx, cart.WithAmount(productID, amount))
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("%w: product %d: %w", ErrLookupFailure, productID, err)
	}
	product.ID = productID
	product.Amount = 1

	return s.commit(ctx, cart.Append(product))
}

func (s *CartService) RemoveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := *s.cart.Load()

	err := s.ensureInCart(cart, productID)
	if err == nil {
		err = s.commit(ctx, cart.Without(productID))
	}
	if err != nil {
		s.reject("remove", productID, err, MsgRemoveFailed)
		return err
	}
	return nil
}

func (s *CartService) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateProductAmount(ctx, req); err != nil {
		s.reject("update", req.ProductID, err, MsgUpdateFailed)
		return err
	}
	return nil
}

func (s *CartService) updateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	if req.Amount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, req.Amount)
	}

	cart := *s.cart.Load()
	if err := s.ensureInCart(cart, req.ProductID); err != nil {
		return err
	}

	stock, err := s.catalog.GetStock(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("%w: stock of product %d: %w", ErrLookupFailure, req.ProductID, err)
	}
	if req.Amount > stock.Amount {
		return fmt.Errorf("%w: product %d requested %d, stock %d", ErrOutOfStock, req.ProductID, req.Amount, stock.Amount)
	}

	return s.commit(ctx, cart.WithAmount(req.ProductID, req.Amount))
}

func (s *CartService) ensureInCart(cart domain.Cart, productID int64) error {
	if _, ok := cart.Find(productID); !ok {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	return nil
}

// commit persists next and only then publishes it, so memory never runs ahead
// of storage.
func (s *CartService) commit(ctx context.Context, next domain.Cart) error {
	if err := s.storage.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.cart.Store(&next)
	return nil
}

func (s *CartService) reject(op string, productID int64, err error, fallback string) {
	s.log.WithFields(logrus.Fields{
		"op":         op,
		"product_id": productID,
	}).WithError(err).Info("cart operation rejected")

	if s.notifier != nil {
		s.notifier.Error(message(err, fallback))
	}
}
