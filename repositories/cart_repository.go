package repositories

import (
	"context"
	"errors"

	"spooky-styles/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type cartRepository struct {
	db DB
}

func NewCartRepository(db DB) CartRepository {
	return &cartRepository{db: db}
}

func ownerCondition(owner models.CartOwner) sq.Eq {
	if owner.IsGuest() {
		return sq.Eq{"session_id": owner.SessionID}
	}
	return sq.Eq{"user_id": owner.UserID}
}

func (r *cartRepository) Find(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return findCart(ctx, r.db, owner, false)
}

func findCart(ctx context.Context, db DB, owner models.CartOwner, lock bool) (*models.Cart, error) {
	q := psql.Select("id", "user_id", "session_id", "created_at", "updated_at").
		From("carts").
		Where(ownerCondition(owner))
	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	var cart models.Cart
	if err := queryRow(ctx, db, q, &cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}

	items, err := cartItems(ctx, db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	cart.Summarize()
	return &cart, nil
}

// upsertCart creates the owner's cart if needed and returns it without items.
func upsertCart(ctx context.Context, db DB, owner models.CartOwner) (*models.Cart, error) {
	q := psql.Insert("carts")
	if owner.IsGuest() {
		q = q.Columns("session_id").Values(owner.SessionID).
			Suffix("ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW() RETURNING id, user_id, session_id, created_at, updated_at")
	} else {
		q = q.Columns("user_id").Values(owner.UserID).
			Suffix("ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW() RETURNING id, user_id, session_id, created_at, updated_at")
	}

	var cart models.Cart
	if err := queryRow(ctx, db, q, &cart.ID, &cart.UserID, &cart.SessionID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindOrCreate(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := upsertCart(ctx, r.db, owner)
	if err != nil {
		return nil, err
	}

	items, err := cartItems(ctx, r.db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	cart.Summarize()
	return cart, nil
}

func buildCartItemsQuery(cartID int) sq.SelectBuilder {
	return psql.Select(
		"ci.id", "ci.cart_id", "ci.product_id", "p.name", "p.image_url", "p.price", "p.stock_quantity",
		"ci.quantity", "ci.customizations", "ci.created_at", "ci.updated_at",
	).
		From("cart_items ci").
		Join("products p ON p.id = ci.product_id").
		Where(sq.Eq{"ci.cart_id": cartID}).
		OrderBy("ci.created_at", "ci.id")
}

func cartItems(ctx context.Context, db DB, cartID int) ([]models.CartItem, error) {
	query, args, err := buildCartItemsQuery(cartID).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.ProductName, &it.ProductImage, &it.UnitPrice,
			&it.StockQuantity, &it.Quantity, &it.Customizations, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if it.Customizations == nil {
			it.Customizations = models.Customizations{}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertCartItem(ctx context.Context, db DB, item *models.CartItem) error {
	return queryRow(ctx, db, psql.Insert("cart_items").
		Columns("cart_id", "product_id", "quantity", "customizations").
		Values(item.CartID, item.ProductID, item.Quantity, item.Customizations).
		Suffix("RETURNING id, created_at, updated_at"),
		&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *cartRepository) InsertItem(ctx context.Context, item *models.CartItem) error {
	if err := insertCartItem(ctx, r.db, item); err != nil {
		return err
	}
	return touchCart(ctx, r.db, item.CartID)
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID, quantity int) error {
	err := execOne(ctx, r.db, psql.Update("cart_items").
		Set("quantity", quantity).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": itemID, "cart_id": cartID}))
	if err != nil {
		return err
	}
	return touchCart(ctx, r.db, cartID)
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, itemID int) error {
	if err := execOne(ctx, r.db, psql.Delete("cart_items").Where(sq.Eq{"id": itemID, "cart_id": cartID})); err != nil {
		return err
	}
	return touchCart(ctx, r.db, cartID)
}

func (r *cartRepository) Clear(ctx context.Context, cartID int) error {
	if _, err := exec(ctx, r.db, psql.Delete("cart_items").Where(sq.Eq{"cart_id": cartID})); err != nil {
		return err
	}
	return touchCart(ctx, r.db, cartID)
}

func touchCart(ctx context.Context, db DB, cartID int) error {
	_, err := exec(ctx, db, psql.Update("carts").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": cartID}))
	return err
}

// MergeGuest folds the guest cart into the user's cart and deletes it.
// A missing guest cart is not an error.
func (r *cartRepository) MergeGuest(ctx context.Context, sessionID string, userID int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		guest, err := findCart(ctx, tx, models.CartOwner{SessionID: sessionID}, true)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		userCart, err := upsertCart(ctx, tx, models.CartOwner{UserID: userID})
		if err != nil {
			return err
		}
		userItems, err := cartItems(ctx, tx, userCart.ID)
		if err != nil {
			return err
		}

		updates, inserts := planMerge(userItems, guest.Items)
		for _, u := range updates {
			if _, err := exec(ctx, tx, psql.Update("cart_items").
				Set("quantity", u.quantity).
				Set("updated_at", sq.Expr("NOW()")).
				Where(sq.Eq{"id": u.itemID})); err != nil {
				return err
			}
		}
		for i := range inserts {
			inserts[i].CartID = userCart.ID
			if err := insertCartItem(ctx, tx, &inserts[i]); err != nil {
				return err
			}
		}

		if _, err := exec(ctx, tx, psql.Delete("carts").Where(sq.Eq{"id": guest.ID})); err != nil {
			return err
		}
		return touchCart(ctx, tx, userCart.ID)
	})
}

type lineUpdate struct {
	itemID   int
	quantity int
}

// planMerge decides how guest lines land in the user's cart: a line with the
// same product and customizations gains the guest quantity, anything else is
// inserted. Quantities are capped at the product's stock.
func planMerge(userItems, guestItems []models.CartItem) ([]lineUpdate, []models.CartItem) {
	var (
		updates []lineUpdate
		inserts []models.CartItem
	)
	pending := map[int]int{}

	for _, g := range guestItems {
		if g.StockQuantity <= 0 {
			continue
		}

		matched := false
		for _, u := range userItems {
			if u.ProductID != g.ProductID || !u.Customizations.Equal(g.Customizations) {
				continue
			}
			current, ok := pending[u.ID]
			if !ok {
				current = u.Quantity
			}
			pending[u.ID] = min(current+g.Quantity, g.StockQuantity)
			matched = true
			break
		}
		if matched {
			continue
		}

		merged := false
		for i := range inserts {
			if inserts[i].ProductID == g.ProductID && inserts[i].Customizations.Equal(g.Customizations) {
				inserts[i].Quantity = min(inserts[i].Quantity+g.Quantity, g.StockQuantity)
				merged = true
				break
			}
		}
		if !merged {
			inserts = append(inserts, models.CartItem{
				ProductID:      g.ProductID,
				Quantity:       min(g.Quantity, g.StockQuantity),
				Customizations: g.Customizations,
			})
		}
	}

	for _, u := range userItems {
		if q, ok := pending[u.ID]; ok && q != u.Quantity {
			updates = append(updates, lineUpdate{itemID: u.ID, quantity: q})
		}
	}
	return updates, inserts
}
