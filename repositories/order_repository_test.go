package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"spooky-styles/models"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderFilter(t *testing.T) {
	query, args, err := buildOrderFilter(models.OrderFilter{UserID: 3, Status: "paid", Search: "SS-2024"}).
		Column("COUNT(*)").
		ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2 AND "+
			"(order_number ILIKE $3 OR shipping_email ILIKE $4 OR shipping_first_name || ' ' || shipping_last_name ILIKE $5)",
		query)
	assert.Equal(t, []any{3, "paid", "%SS-2024%", "%SS-2024%", "%SS-2024%"}, args)
}

func TestBuildOrderFilter_Empty(t *testing.T) {
	query, args, err := buildOrderFilter(models.OrderFilter{}).Column("COUNT(*)").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", query)
	assert.Empty(t, args)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []int{1, 5, 9}, sortedKeys(map[int]int{9: 1, 1: 2, 5: 3}))
}

func TestRestockOrderAggregatesPerProduct(t *testing.T) {
	assert.Contains(t, restockOrder, "SUM(quantity)")
	assert.Contains(t, restockOrder, "GROUP BY product_id")
}

var lockColumns = []string{"id", "name", "price", "stock_quantity", "is_active"}

const (
	lockProductsSQL = "SELECT id, name, price, stock_quantity, is_active FROM products WHERE id IN ($1,$2) ORDER BY id FOR UPDATE"
	decrementSQL    = "UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2"
	clearCartSQL    = "DELETE FROM cart_items WHERE cart_id = $1"
)

func pendingOrder() *models.Order {
	one, two := 1, 2
	return &models.Order{
		OrderNumber:   "SS-20241031-ABCD1234",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		Shipping:      models.ShippingInfo{FirstName: "Morticia", Email: "morticia@example.com"},
		Items: []models.OrderItem{
			// names and prices from the client are replaced by the locked rows
			{ProductID: &two, ProductName: "stale", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
			{ProductID: &one, Quantity: 2},
		},
	}
}

func TestOrderRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductsSQL)).
		WithArgs(1, 2).
		WillReturnRows(pgxmock.NewRows(lockColumns).
			AddRow(1, "Raven Wig", decimal.RequireFromString("29.99"), 5, true).
			AddRow(2, "Bat Wings", decimal.RequireFromString("15.00"), 1, true))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(100).AddRow(101))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).WithArgs(2, 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).WithArgs(1, 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(clearCartSQL)).WithArgs(9).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	order := pendingOrder()
	require.NoError(t, NewOrderRepository(mock).Create(context.Background(), order, 9))

	assert.Equal(t, 42, order.ID)
	assert.Equal(t, "Bat Wings", order.Items[0].ProductName)
	assert.Equal(t, "15.00", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "Raven Wig", order.Items[1].ProductName)
	assert.Equal(t, 100, order.Items[0].ID)
	assert.Equal(t, 101, order.Items[1].ID)
	assert.Equal(t, "74.98", order.Subtotal.StringFixed(2))
	assert.Equal(t, "5.99", order.ShippingCost.StringFixed(2))
	assert.Equal(t, "80.97", order.Total.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_InsufficientStock(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductsSQL)).
		WithArgs(1, 2).
		WillReturnRows(pgxmock.NewRows(lockColumns).
			AddRow(1, "Raven Wig", decimal.RequireFromString("29.99"), 1, true).
			AddRow(2, "Bat Wings", decimal.RequireFromString("15.00"), 1, true))
	mock.ExpectRollback()

	err := NewOrderRepository(mock).Create(context.Background(), pendingOrder(), 9)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorContains(t, err, "only 1 of Raven Wig left")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_InactiveOrMissingProduct(t *testing.T) {
	t.Run("inactive", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockProductsSQL)).
			WillReturnRows(pgxmock.NewRows(lockColumns).
				AddRow(1, "Raven Wig", decimal.RequireFromString("29.99"), 10, true).
				AddRow(2, "Bat Wings", decimal.RequireFromString("15.00"), 10, false))
		mock.ExpectRollback()

		err := NewOrderRepository(mock).Create(context.Background(), pendingOrder(), 9)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.ErrorContains(t, err, "Bat Wings is no longer available")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deleted", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(lockProductsSQL)).
			WillReturnRows(pgxmock.NewRows(lockColumns).
				AddRow(1, "Raven Wig", decimal.RequireFromString("29.99"), 10, true))
		mock.ExpectRollback()

		err := NewOrderRepository(mock).Create(context.Background(), pendingOrder(), 9)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.ErrorContains(t, err, "product 2 no longer exists")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func orderRow(id int, status string) *pgxmock.Rows {
	uid := 3
	now := time.Now()
	return pgxmock.NewRows(orderColumns).AddRow(
		id, "SS-20241031-ABCD1234", &uid, status, models.PaymentStatusPaid, models.PaymentProviderStripe, "pi_1",
		decimal.RequireFromString("29.99"), decimal.RequireFromString("5.99"), decimal.Zero, decimal.RequireFromString("35.98"),
		"Morticia", "Addams", "morticia@example.com", "", "1 Cemetery Lane",
		"Westfield", "NJ", "07090", "US",
		"", now, now,
	)
}

const updateStatusSQL = "UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING id"

func TestOrderRepository_UpdateStatus(t *testing.T) {
	itemColumns := []string{"id", "order_id", "product_id", "product_name", "unit_price", "quantity", "customizations"}
	pid := 1

	t.Run("cancel restocks", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(updateStatusSQL)).
			WithArgs(models.OrderStatusCancelled, 5, models.OrderStatusPaid).
			WillReturnRows(orderRow(5, models.OrderStatusCancelled))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE products p")).
			WithArgs(5).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = $1")).
			WithArgs(5).
			WillReturnRows(pgxmock.NewRows(itemColumns).
				AddRow(7, 5, &pid, "Raven Wig", decimal.RequireFromString("29.99"), 1, models.Customizations{"size": "M"}))
		mock.ExpectCommit()

		order, err := NewOrderRepository(mock).UpdateStatus(context.Background(), 5, models.OrderStatusPaid, models.OrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, order.Status)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "M", order.Items[0].Customizations["size"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ship does not restock", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(updateStatusSQL)).
			WithArgs(models.OrderStatusShipped, 5, models.OrderStatusProcessing).
			WillReturnRows(orderRow(5, models.OrderStatusShipped))
		mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = $1")).
			WithArgs(5).
			WillReturnRows(pgxmock.NewRows(itemColumns))
		mock.ExpectCommit()

		order, err := NewOrderRepository(mock).UpdateStatus(context.Background(), 5, models.OrderStatusProcessing, models.OrderStatusShipped)
		require.NoError(t, err)
		assert.Empty(t, order.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent change", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(updateStatusSQL)).
			WithArgs(models.OrderStatusCancelled, 5, models.OrderStatusPaid).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := NewOrderRepository(mock).UpdateStatus(context.Background(), 5, models.OrderStatusPaid, models.OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrStatusChanged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
