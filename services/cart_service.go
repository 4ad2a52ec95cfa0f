package services

import (
	"context"
	"errors"
	"fmt"

	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/shopspring/decimal"
)

type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func emptyCart(owner models.CartOwner) *models.Cart {
	cart := &models.Cart{Items: []models.CartItem{}, Subtotal: decimal.Zero}
	if owner.IsGuest() {
		cart.SessionID = &owner.SessionID
	} else {
		cart.UserID = &owner.UserID
	}
	return cart
}

// Get returns the owner's cart. An owner without a cart gets an empty one
// without touching the database.
func (s *CartService) Get(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, utils.BadRequest("Missing cart session")
	}

	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return emptyCart(owner), nil
		}
		return nil, utils.Internal("Failed to load cart", err)
	}
	return cart, nil
}

// AddItem adds quantity of a product to the cart. A line with the same
// product and customizations is incremented instead of duplicated.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, req models.AddCartItemRequest) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, utils.BadRequest("Missing cart session")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, productError(err)
	}
	if !product.IsActive {
		return nil, utils.NotFound("Product not found")
	}

	cart, err := s.cartRepo.FindOrCreate(ctx, owner)
	if err != nil {
		return nil, utils.Internal("Failed to load cart", err)
	}

	customizations := req.Customizations.Normalize()
	for _, item := range cart.Items {
		if item.ProductID != product.ID || !item.Customizations.Equal(customizations) {
			continue
		}

		quantity := item.Quantity + req.Quantity
		if quantity > product.StockQuantity {
			return nil, stockError(product, item.Quantity)
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, item.ID, quantity); err != nil {
			return nil, cartItemError(err)
		}
		return s.reload(ctx, owner)
	}

	if req.Quantity > product.StockQuantity {
		return nil, stockError(product, 0)
	}

	item := &models.CartItem{
		CartID:         cart.ID,
		ProductID:      product.ID,
		Quantity:       req.Quantity,
		Customizations: customizations,
	}
	if err := s.cartRepo.InsertItem(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrInvalidReference) {
			return nil, utils.NotFound("Product not found")
		}
		return nil, utils.Internal("Failed to add item", err)
	}

	logger.FromContext(ctx).Debug().
		Int("cart_id", cart.ID).
		Int("product_id", product.ID).
		Str("customizations", customizations.Key()).
		Msg("cart line added")
	return s.reload(ctx, owner)
}

// UpdateItem sets a line's quantity; zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, owner models.CartOwner, itemID, quantity int) (*models.Cart, error) {
	cart, item, err := s.findItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.cartRepo.RemoveItem(ctx, cart.ID, item.ID); err != nil {
			return nil, cartItemError(err)
		}
		return s.reload(ctx, owner)
	}

	if quantity > item.StockQuantity {
		return nil, utils.BadRequest(fmt.Sprintf("Only %d of %s available", item.StockQuantity, item.ProductName))
	}
	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, item.ID, quantity); err != nil {
		return nil, cartItemError(err)
	}
	return s.reload(ctx, owner)
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int) (*models.Cart, error) {
	cart, item, err := s.findItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(ctx, cart.ID, item.ID); err != nil {
		return nil, cartItemError(err)
	}
	return s.reload(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, utils.BadRequest("Missing cart session")
	}

	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return emptyCart(owner), nil
		}
		return nil, utils.Internal("Failed to load cart", err)
	}
	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		return nil, utils.Internal("Failed to clear cart", err)
	}
	return s.reload(ctx, owner)
}

// Merge moves the guest session's cart into the user's cart.
func (s *CartService) Merge(ctx context.Context, userID int, sessionID string) (*models.Cart, error) {
	if sessionID == "" {
		return nil, utils.BadRequest("X-Session-ID header is required")
	}

	if err := s.cartRepo.MergeGuest(ctx, sessionID, userID); err != nil {
		return nil, utils.Internal("Failed to merge cart", err)
	}
	return s.reload(ctx, models.CartOwner{UserID: userID})
}

// findItem locates a line in the owner's cart; lines of other carts are
// reported as not found.
func (s *CartService) findItem(ctx context.Context, owner models.CartOwner, itemID int) (*models.Cart, *models.CartItem, error) {
	if !owner.Valid() {
		return nil, nil, utils.BadRequest("Missing cart session")
	}

	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, utils.NotFound("Cart item not found")
		}
		return nil, nil, utils.Internal("Failed to load cart", err)
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, utils.NotFound("Cart item not found")
}

func (s *CartService) reload(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return emptyCart(owner), nil
		}
		return nil, utils.Internal("Failed to load cart", err)
	}
	return cart, nil
}

func stockError(product *models.Product, inCart int) error {
	available := product.StockQuantity - inCart
	if available < 0 {
		available = 0
	}
	return utils.BadRequest(fmt.Sprintf("Only %d more of %s available", available, product.Name))
}

func cartItemError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("Cart item not found")
	}
	return utils.Internal("Failed to update cart", err)
}
