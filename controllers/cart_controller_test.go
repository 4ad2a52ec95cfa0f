package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"spooky-styles/middleware"
	"spooky-styles/mocks"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newCartRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *mocks.MockCartRepository, *mocks.MockProductRepository) {
	t.Helper()

	cartRepo := mocks.NewMockCartRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)
	cc := NewCartController(services.NewCartService(cartRepo, productRepo))

	r := newTestRouter()
	r.GET("/cart", cc.Get)
	r.DELETE("/cart", cc.Clear)
	r.POST("/cart/items", cc.AddItem)
	r.PUT("/cart/items/:itemId", cc.UpdateItem)
	r.DELETE("/cart/items/:itemId", cc.RemoveItem)
	r.POST("/cart/merge", middleware.RequireAuth(testTokens), cc.Merge)
	return r, cartRepo, productRepo
}

func TestCartController_Get_OwnerResolution(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, cartRepo, _ := newCartRouter(t, ctrl)

	t.Run("guest session", func(t *testing.T) {
		cartRepo.EXPECT().Find(gomock.Any(), models.CartOwner{SessionID: "guest-1"}).Return(nil, repositories.ErrNotFound)

		w := serve(t, r, request{
			method:  http.MethodGet,
			path:    "/cart",
			headers: map[string]string{middleware.HeaderSessionID: "guest-1"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "guest-1", w.Header().Get(middleware.HeaderSessionID))

		var cart models.Cart
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &cart))
		assert.Empty(t, cart.Items)
		require.NotNil(t, cart.SessionID)
		assert.Equal(t, "guest-1", *cart.SessionID)
	})

	t.Run("signed in user wins over session", func(t *testing.T) {
		cartRepo.EXPECT().Find(gomock.Any(), models.CartOwner{UserID: 7}).
			Return(&models.Cart{ID: 3, Items: []models.CartItem{}}, nil)

		headers := bearer(t, 7, models.RoleCustomer)
		headers[middleware.HeaderSessionID] = "guest-1"
		w := serve(t, r, request{method: http.MethodGet, path: "/cart", headers: headers})

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCartController_AddItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, cartRepo, productRepo := newCartRouter(t, ctrl)
	owner := models.CartOwner{SessionID: "guest-1"}
	headers := map[string]string{middleware.HeaderSessionID: "guest-1"}

	t.Run("quantity is validated before any lookup", func(t *testing.T) {
		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/cart/items",
			body:    `{"product_id":1,"quantity":0}`,
			headers: headers,
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w).Errors, "quantity")
	})

	t.Run("over stock", func(t *testing.T) {
		productRepo.EXPECT().FindByID(gomock.Any(), 1).
			Return(&models.Product{ID: 1, Name: "Witch Wig", Price: decimal.NewFromInt(30), StockQuantity: 2, IsActive: true}, nil)
		cartRepo.EXPECT().FindOrCreate(gomock.Any(), owner).Return(&models.Cart{ID: 5}, nil)

		w := serve(t, r, request{
			method:  http.MethodPost,
			path:    "/cart/items",
			body:    `{"product_id":1,"quantity":3}`,
			headers: headers,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}

func TestCartController_UpdateItem_RequiresQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, _ := newCartRouter(t, ctrl)

	w := serve(t, r, request{method: http.MethodPut, path: "/cart/items/4", body: `{}`})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "is required", decode(t, w).Errors["quantity"])

	w = serve(t, r, request{method: http.MethodPut, path: "/cart/items/x", body: `{"quantity":1}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_RemoveItem_OtherCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, cartRepo, _ := newCartRouter(t, ctrl)

	cartRepo.EXPECT().Find(gomock.Any(), models.CartOwner{SessionID: "guest-1"}).
		Return(&models.Cart{ID: 5, Items: []models.CartItem{{ID: 1, CartID: 5}}}, nil)

	w := serve(t, r, request{
		method:  http.MethodDelete,
		path:    "/cart/items/99",
		headers: map[string]string{middleware.HeaderSessionID: "guest-1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartController_Merge(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, cartRepo, _ := newCartRouter(t, ctrl)

	t.Run("requires auth", func(t *testing.T) {
		w := serve(t, r, request{method: http.MethodPost, path: "/cart/merge"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("requires a client session", func(t *testing.T) {
		w := serve(t, r, request{method: http.MethodPost, path: "/cart/merge", headers: bearer(t, 7, models.RoleCustomer)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("merges", func(t *testing.T) {
		gomock.InOrder(
			cartRepo.EXPECT().MergeGuest(gomock.Any(), "guest-1", 7).Return(nil),
			cartRepo.EXPECT().Find(gomock.Any(), models.CartOwner{UserID: 7}).
				Return(&models.Cart{ID: 3, Items: []models.CartItem{}}, nil),
		)

		headers := bearer(t, 7, models.RoleCustomer)
		headers[middleware.HeaderSessionID] = "guest-1"
		w := serve(t, r, request{method: http.MethodPost, path: "/cart/merge", headers: headers})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}
