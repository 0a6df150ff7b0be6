package domain

// Product is a catalog product. Amount is the quantity held in the cart and is
// zero for products returned by the catalog.
type Product struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// Stock is the maximum purchasable quantity of a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
