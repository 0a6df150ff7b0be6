package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

// MySQLAdapter reads the product catalog and its stock levels.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, `
		SELECT id, title, price, image
		FROM products WHERE id = ?`, productID,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Image)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, port.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, title, price, image FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (m *MySQLAdapter) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var s domain.Stock
	err := m.db.QueryRowContext(ctx, `
		SELECT product_id, amount
		FROM stock WHERE product_id = ?`, productID,
	).Scan(&s.ID, &s.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, fmt.Errorf("stock %d: %w", productID, port.ErrNotFound)
	}
	if err != nil {
		return domain.Stock{}, fmt.Errorf("query stock: %w", err)
	}
	return s, nil
}

func (m *MySQLAdapter) ListStock(ctx context.Context) ([]domain.Stock, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT product_id, amount FROM stock ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	var stock []domain.Stock
	for rows.Next() {
		var s domain.Stock
		if err := rows.Scan(&s.ID, &s.Amount); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stock = append(stock, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock: %w", err)
	}
	return stock, nil
}

// SetStock sets the absolute stock of an existing product.
func (m *MySQLAdapter) SetStock(ctx context.Context, productID int64, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", port.ErrNegativeStock, amount)
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE stock
		SET amount = ?, updated_at = NOW()
		WHERE product_id = ?`,
		amount, productID,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	// Without clientFoundRows the driver counts changed rows, so an unchanged
	// amount also reports zero.
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var exists int
	err = m.db.QueryRowContext(ctx, `SELECT 1 FROM stock WHERE product_id = ?`, productID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("stock %d: %w", productID, port.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check stock: %w", err)
	}
	return nil
}
