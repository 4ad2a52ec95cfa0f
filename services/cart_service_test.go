package services

import (
	"context"
	"testing"

	"spooky-styles/mocks"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	guestOwner = models.CartOwner{SessionID: "guest-1"}
	userOwner  = models.CartOwner{UserID: 7}
)

func newTestCartSvc(t *testing.T, ctrl *gomock.Controller) (*CartService, *mocks.MockCartRepository, *mocks.MockProductRepository) {
	t.Helper()
	carts := mocks.NewMockCartRepository(ctrl)
	products := mocks.NewMockProductRepository(ctrl)
	return NewCartService(carts, products), carts, products
}

func wig(stock int) *models.Product {
	return &models.Product{ID: 3, Name: "Silver Wig", Price: decimal.NewFromInt(30), StockQuantity: stock, IsActive: true}
}

func TestCartService_Get_NoCartYet(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, _ := newTestCartSvc(t, ctrl)

	carts.EXPECT().Find(gomock.Any(), guestOwner).Return(nil, repositories.ErrNotFound)

	cart, err := svc.Get(context.Background(), guestOwner)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "guest-1", *cart.SessionID)
}

func TestCartService_Get_RequiresOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, _ := newTestCartSvc(t, ctrl)

	_, err := svc.Get(context.Background(), models.CartOwner{})
	requireKind(t, err, utils.KindBadRequest)
}

func TestCartService_AddItem_IncrementsMatchingLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, products := newTestCartSvc(t, ctrl)

	cart := &models.Cart{ID: 10, Items: []models.CartItem{
		{ID: 100, ProductID: 3, Quantity: 1, Customizations: models.Customizations{"color": "silver"}},
		{ID: 101, ProductID: 3, Quantity: 1, Customizations: models.Customizations{"color": "black"}},
	}}

	products.EXPECT().FindByID(gomock.Any(), 3).Return(wig(5), nil)
	carts.EXPECT().FindOrCreate(gomock.Any(), userOwner).Return(cart, nil)
	carts.EXPECT().UpdateItemQuantity(gomock.Any(), 10, 100, 3).Return(nil)
	carts.EXPECT().Find(gomock.Any(), userOwner).Return(cart, nil)

	_, err := svc.AddItem(context.Background(), userOwner, models.AddCartItemRequest{
		ProductID:      3,
		Quantity:       2,
		Customizations: models.Customizations{" Color ": "silver"},
	})
	require.NoError(t, err)
}

func TestCartService_AddItem_NewLineForDifferentCustomizations(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, products := newTestCartSvc(t, ctrl)

	cart := &models.Cart{ID: 10, Items: []models.CartItem{
		{ID: 100, ProductID: 3, Quantity: 1, Customizations: models.Customizations{"color": "silver"}},
	}}

	products.EXPECT().FindByID(gomock.Any(), 3).Return(wig(5), nil)
	carts.EXPECT().FindOrCreate(gomock.Any(), guestOwner).Return(cart, nil)
	carts.EXPECT().InsertItem(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item *models.CartItem) error {
		assert.Equal(t, 10, item.CartID)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, models.Customizations{"color": "red"}, item.Customizations)
		return nil
	})
	carts.EXPECT().Find(gomock.Any(), guestOwner).Return(cart, nil)

	_, err := svc.AddItem(context.Background(), guestOwner, models.AddCartItemRequest{
		ProductID: 3, Quantity: 1, Customizations: models.Customizations{"color": "red"},
	})
	require.NoError(t, err)
}

func TestCartService_AddItem_ExceedsStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, products := newTestCartSvc(t, ctrl)

	cart := &models.Cart{ID: 10, Items: []models.CartItem{{ID: 100, ProductID: 3, Quantity: 2}}}

	products.EXPECT().FindByID(gomock.Any(), 3).Return(wig(3), nil)
	carts.EXPECT().FindOrCreate(gomock.Any(), userOwner).Return(cart, nil)

	_, err := svc.AddItem(context.Background(), userOwner, models.AddCartItemRequest{ProductID: 3, Quantity: 2})
	requireKind(t, err, utils.KindBadRequest)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, products := newTestCartSvc(t, ctrl)

	p := wig(5)
	p.IsActive = false
	products.EXPECT().FindByID(gomock.Any(), 3).Return(p, nil)

	_, err := svc.AddItem(context.Background(), userOwner, models.AddCartItemRequest{ProductID: 3, Quantity: 1})
	requireKind(t, err, utils.KindNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	cart := func() *models.Cart {
		return &models.Cart{ID: 10, Items: []models.CartItem{{ID: 100, ProductID: 3, ProductName: "Silver Wig", Quantity: 1, StockQuantity: 4}}}
	}

	t.Run("zero removes the line", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, carts, _ := newTestCartSvc(t, ctrl)

		carts.EXPECT().Find(gomock.Any(), userOwner).Return(cart(), nil).Times(2)
		carts.EXPECT().RemoveItem(gomock.Any(), 10, 100).Return(nil)

		_, err := svc.UpdateItem(context.Background(), userOwner, 100, 0)
		require.NoError(t, err)
	})

	t.Run("stock enforced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, carts, _ := newTestCartSvc(t, ctrl)

		carts.EXPECT().Find(gomock.Any(), userOwner).Return(cart(), nil)

		_, err := svc.UpdateItem(context.Background(), userOwner, 100, 5)
		requireKind(t, err, utils.KindBadRequest)
	})

	t.Run("item of another cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, carts, _ := newTestCartSvc(t, ctrl)

		carts.EXPECT().Find(gomock.Any(), userOwner).Return(cart(), nil)

		_, err := svc.UpdateItem(context.Background(), userOwner, 999, 1)
		requireKind(t, err, utils.KindNotFound)
	})
}

func TestCartService_Clear_NoCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, _ := newTestCartSvc(t, ctrl)

	carts.EXPECT().Find(gomock.Any(), guestOwner).Return(nil, repositories.ErrNotFound)

	cart, err := svc.Clear(context.Background(), guestOwner)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_Merge(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, carts, _ := newTestCartSvc(t, ctrl)

	_, err := svc.Merge(context.Background(), 7, "")
	requireKind(t, err, utils.KindBadRequest)

	gomock.InOrder(
		carts.EXPECT().MergeGuest(gomock.Any(), "guest-1", 7).Return(nil),
		carts.EXPECT().Find(gomock.Any(), userOwner).Return(&models.Cart{ID: 10}, nil),
	)
	cart, err := svc.Merge(context.Background(), 7, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 10, cart.ID)
}
