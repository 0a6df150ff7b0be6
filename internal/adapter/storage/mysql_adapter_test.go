package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shoes-cart/internal/core/domain"
	"github.com/rl1809/shoes-cart/internal/port"
)

func newMockDB(t *testing.T) (*MySQLAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewMySQLAdapter(db), mock
}

func TestMySQL_GetProduct(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "image"}).
			AddRow(int64(1), "Tênis de Caminhada", 179.9, "https://example.com/1.jpg"))

	p, err := adapter.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.Product{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Image: "https://example.com/1.jpg"}, p)
}

func TestMySQL_GetProductNotFound(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := adapter.GetProduct(context.Background(), 99)
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestMySQL_GetStock(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stock WHERE product_id = ?")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "amount"}).AddRow(int64(2), 5))

	s, err := adapter.GetStock(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, domain.Stock{ID: 2, Amount: 5}, s)
}

func TestMySQL_GetStockQueryError(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM stock WHERE product_id = ?")).
		WithArgs(int64(2)).
		WillReturnError(errors.New("connection reset"))

	_, err := adapter.GetStock(context.Background(), 2)
	require.Error(t, err)
	require.NotErrorIs(t, err, port.ErrNotFound)
}

func TestMySQL_ListProducts(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, price, image FROM products ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "image"}).
			AddRow(int64(1), "A", 10.0, "a.jpg").
			AddRow(int64(2), "B", 20.0, "b.jpg"))

	products, err := adapter.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "B", products[1].Title)
}

func TestMySQL_ListStock(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT product_id, amount FROM stock")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "amount"}).
			AddRow(int64(1), 3).
			AddRow(int64(2), 0))

	stock, err := adapter.ListStock(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Stock{{ID: 1, Amount: 3}, {ID: 2, Amount: 0}}, stock)
}

func TestMySQL_SetStock(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock SET amount = ?")).
		WithArgs(7, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.SetStock(context.Background(), 1, 7))
}

func TestMySQL_SetStockUnchangedAmount(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock SET amount = ?")).
		WithArgs(7, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM stock WHERE product_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, adapter.SetStock(context.Background(), 1, 7))
}

func TestMySQL_SetStockUnknownProduct(t *testing.T) {
	adapter, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE stock SET amount = ?")).
		WithArgs(7, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM stock WHERE product_id = ?")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	err := adapter.SetStock(context.Background(), 404, 7)
	require.ErrorIs(t, err, port.ErrNotFound)
}

func TestMySQL_SetStockNegative(t *testing.T) {
	adapter, _ := newMockDB(t)

	err := adapter.SetStock(context.Background(), 1, -1)
	require.ErrorIs(t, err, port.ErrNegativeStock)
}
