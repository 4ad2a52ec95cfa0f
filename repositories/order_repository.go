package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id", "order_number", "user_id", "status", "payment_status", "payment_provider", "payment_reference",
	"subtotal", "shipping_cost", "tax", "total",
	"shipping_first_name", "shipping_last_name", "shipping_email", "shipping_phone", "shipping_address",
	"shipping_city", "shipping_state", "shipping_postal_code", "shipping_country",
	"notes", "created_at", "updated_at",
}

var orderReturning = "RETURNING " + strings.Join(orderColumns, ", ")

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	s := &o.Shipping
	return row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentProvider, &o.PaymentReference,
		&o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total,
		&s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Address,
		&s.City, &s.State, &s.PostalCode, &s.Country,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
}

type lockedProduct struct {
	name     string
	price    decimal.Decimal
	stock    int
	isActive bool
}

// Create writes the order in one transaction: product rows are locked, stock
// is checked and decremented, prices and names are snapshotted from the
// locked rows and the source cart is emptied.
func (r *orderRepository) Create(ctx context.Context, order *models.Order, cartID int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		wanted := map[int]int{}
		for _, it := range order.Items {
			wanted[*it.ProductID] += it.Quantity
		}

		locked, err := lockProducts(ctx, tx, wanted)
		if err != nil {
			return err
		}

		for i := range order.Items {
			p := locked[*order.Items[i].ProductID]
			order.Items[i].ProductName = p.name
			order.Items[i].UnitPrice = p.price
		}
		for id, qty := range wanted {
			p := locked[id]
			if !p.isActive {
				return fmt.Errorf("%w: %s is no longer available", ErrInsufficientStock, p.name)
			}
			if p.stock < qty {
				return fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, p.stock, p.name)
			}
		}
		order.ComputeTotals()

		s := order.Shipping
		err = queryRow(ctx, tx, psql.Insert("orders").
			Columns("order_number", "user_id", "status", "payment_status", "payment_provider",
				"subtotal", "shipping_cost", "tax", "total",
				"shipping_first_name", "shipping_last_name", "shipping_email", "shipping_phone", "shipping_address",
				"shipping_city", "shipping_state", "shipping_postal_code", "shipping_country", "notes").
			Values(order.OrderNumber, order.UserID, order.Status, order.PaymentStatus, order.PaymentProvider,
				order.Subtotal, order.ShippingCost, order.Tax, order.Total,
				s.FirstName, s.LastName, s.Email, s.Phone, s.Address,
				s.City, s.State, s.PostalCode, s.Country, order.Notes).
			Suffix("RETURNING id, created_at, updated_at"),
			&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		items := psql.Insert("order_items").
			Columns("order_id", "product_id", "product_name", "unit_price", "quantity", "customizations").
			Suffix("RETURNING id")
		for _, it := range order.Items {
			items = items.Values(order.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Customizations)
		}
		if err := scanIDs(ctx, tx, items, order.Items); err != nil {
			return err
		}

		for _, id := range sortedKeys(wanted) {
			if _, err := exec(ctx, tx, psql.Update("products").
				Set("stock_quantity", sq.Expr("stock_quantity - ?", wanted[id])).
				Set("updated_at", sq.Expr("NOW()")).
				Where(sq.Eq{"id": id})); err != nil {
				return err
			}
		}

		_, err = exec(ctx, tx, psql.Delete("cart_items").Where(sq.Eq{"cart_id": cartID}))
		return err
	})
}

// lockProducts takes row locks in id order so concurrent checkouts touching
// the same products cannot deadlock.
func lockProducts(ctx context.Context, tx pgx.Tx, wanted map[int]int) (map[int]lockedProduct, error) {
	ids := sortedKeys(wanted)
	query, args, err := psql.Select("id", "name", "price", "stock_quantity", "is_active").
		From("products").
		Where(sq.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[int]lockedProduct, len(ids))
	for rows.Next() {
		var id int
		var p lockedProduct
		if err := rows.Scan(&id, &p.name, &p.price, &p.stock, &p.isActive); err != nil {
			return nil, err
		}
		locked[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("%w: product %d no longer exists", ErrInsufficientStock, id)
		}
	}
	return locked, nil
}

func scanIDs(ctx context.Context, tx pgx.Tx, b sq.InsertBuilder, items []models.OrderItem) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i < len(items) {
			if err := rows.Scan(&items[i].ID); err != nil {
				return err
			}
		}
		i++
	}
	return rows.Err()
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (r *orderRepository) findOne(ctx context.Context, where sq.Sqlizer) (*models.Order, error) {
	var o models.Order
	query, args, err := psql.Select(orderColumns...).From("orders").Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	if err := scanOrder(r.db.QueryRow(ctx, query, args...), &o); err != nil {
		return nil, mapError(err)
	}

	items, err := orderItems(ctx, r.db, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func orderItems(ctx context.Context, db DB, orderID int) ([]models.OrderItem, error) {
	query, args, err := psql.Select("id", "order_id", "product_id", "product_name", "unit_price", "quantity", "customizations").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.Customizations); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*models.Order, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *orderRepository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.findOne(ctx, sq.Eq{"order_number": strings.ToUpper(strings.TrimSpace(orderNumber))})
}

func (r *orderRepository) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	return r.findOne(ctx, sq.And{sq.Eq{"payment_reference": reference}, sq.NotEq{"payment_reference": ""}})
}

func buildOrderFilter(f models.OrderFilter) sq.SelectBuilder {
	q := psql.Select().From("orders")
	if f.UserID > 0 {
		q = q.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where(sq.Or{
			sq.ILike{"order_number": like},
			sq.ILike{"shipping_email": like},
			sq.ILike{"shipping_first_name || ' ' || shipping_last_name": like},
		})
	}
	return q
}

func (r *orderRepository) List(ctx context.Context, f models.OrderFilter) (models.Page[models.Order], error) {
	var result models.Page[models.Order]

	base := buildOrderFilter(f)
	total, err := count(ctx, r.db, base)
	if err != nil {
		return result, err
	}

	orders, err := r.query(ctx, base.Columns(orderColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page-1)*f.Limit)))
	if err != nil {
		return result, err
	}

	result.Items = orders
	result.Total = total
	return result, nil
}

func (r *orderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.query(ctx, psql.Select(orderColumns...).From("orders").OrderBy("created_at DESC", "id DESC"))
}

func (r *orderRepository) query(ctx context.Context, b sq.SelectBuilder) ([]models.Order, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves an order from one status to another. The WHERE clause on
// the old status makes a concurrent change fail with ErrStatusChanged.
// Cancelling puts the ordered quantities back into stock.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int, from, to string) (*models.Order, error) {
	var order models.Order
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := psql.Update("orders").
			Set("status", to).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id, "status": from}).
			Suffix(orderReturning).
			ToSql()
		if err != nil {
			return err
		}
		if err := scanOrder(tx.QueryRow(ctx, query, args...), &order); err != nil {
			if err = mapError(err); errors.Is(err, ErrNotFound) {
				return ErrStatusChanged
			}
			return err
		}

		if to == models.OrderStatusCancelled {
			if _, err := tx.Exec(ctx, restockOrder, id); err != nil {
				return err
			}
		}

		items, err := orderItems(ctx, tx, id)
		if err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

const restockOrder = `
	UPDATE products p
	SET stock_quantity = p.stock_quantity + oi.qty, updated_at = NOW()
	FROM (
		SELECT product_id, SUM(quantity) AS qty
		FROM order_items
		WHERE order_id = $1 AND product_id IS NOT NULL
		GROUP BY product_id
	) oi
	WHERE p.id = oi.product_id`

func (r *orderRepository) SetPaymentReference(ctx context.Context, id int, provider, reference string) error {
	return execOne(ctx, r.db, psql.Update("orders").
		Set("payment_provider", provider).
		Set("payment_reference", reference).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

// MarkPaid records a successful payment; a pending order also advances to paid.
func (r *orderRepository) MarkPaid(ctx context.Context, id int) (*models.Order, error) {
	query, args, err := psql.Update("orders").
		Set("payment_status", models.PaymentStatusPaid).
		Set("status", sq.Expr("CASE WHEN status = ? THEN ? ELSE status END", models.OrderStatusPending, models.OrderStatusPaid)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(orderReturning).
		ToSql()
	if err != nil {
		return nil, err
	}

	var o models.Order
	if err := scanOrder(r.db.QueryRow(ctx, query, args...), &o); err != nil {
		return nil, mapError(err)
	}
	items, err := orderItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *orderRepository) MarkPaymentFailed(ctx context.Context, id int) error {
	return execOne(ctx, r.db, psql.Update("orders").
		Set("payment_status", models.PaymentStatusFailed).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "payment_status": models.PaymentStatusUnpaid}))
}
