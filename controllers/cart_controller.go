package controllers

import (
	"net/http"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"

	"github.com/gin-gonic/gin"
)

// CartController serves the caller's cart: the signed-in user's, otherwise
// the one tied to X-Session-ID.
type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// @Summary Get cart
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) Get(c *gin.Context) {
	cart, err := ctrl.carts.Get(c.Request.Context(), middleware.CartOwner(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved", cart)
}

// @Summary Add item to cart
// @Description Adds to an existing line when product and customizations match
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param request body models.AddCartItemRequest true "Item"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := ctrl.carts.AddItem(c.Request.Context(), middleware.CartOwner(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart", cart)
}

// @Summary Update cart item quantity
// @Description Quantity 0 removes the line
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param itemId path int true "Cart item ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Router /cart/items/{itemId} [put]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := ctrl.carts.UpdateItem(c.Request.Context(), middleware.CartOwner(c), itemID, *req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart updated", cart)
}

// @Summary Remove cart item
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param itemId path int true "Cart item ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{itemId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	cart, err := ctrl.carts.RemoveItem(c.Request.Context(), middleware.CartOwner(c), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", cart)
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) Clear(c *gin.Context) {
	cart, err := ctrl.carts.Clear(c.Request.Context(), middleware.CartOwner(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart cleared", cart)
}

// @Summary Merge guest cart
// @Description Moves the X-Session-ID cart into the signed-in user's cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param X-Session-ID header string true "Guest session"
// @Success 200 {object} models.Response
// @Router /cart/merge [post]
func (ctrl *CartController) Merge(c *gin.Context) {
	cart, err := ctrl.carts.Merge(c.Request.Context(), middleware.CurrentViewer(c).UserID, middleware.ClientSessionID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart merged", cart)
}
