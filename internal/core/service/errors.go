package service

import "errors"

var (
	ErrOutOfStock      = errors.New("out of stock")
	ErrProductNotFound = errors.New("product not in cart")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrLookupFailure   = errors.New("catalog lookup failed")
	ErrPersistence     = errors.New("cart persistence failed")
)

// Messages shown to the shopper when an operation is rejected.
const (
	MsgOutOfStock   = "Requested quantity is out of stock"
	MsgAddFailed    = "Failed to add product"
	MsgRemoveFailed = "Failed to remove product"
	MsgUpdateFailed = "Failed to update product quantity"
)

// message picks the notification for a rejected operation. Out of stock has one
// canonical message whatever the operation.
func message(err error, fallback string) string {
	if errors.Is(err, ErrOutOfStock) {
		return MsgOutOfStock
	}
	return fallback
}
