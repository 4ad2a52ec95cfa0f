package controllers

import (
	"io"
	"net/http"
	"strings"

	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders *services.OrderService
	hub    *libs.Hub
}

func NewOrderController(orders *services.OrderService, hub *libs.Hub) *OrderController {
	return &OrderController{orders: orders, hub: hub}
}

// @Summary Checkout
// @Description Places an order from the caller's cart. Guests must supply shipping email, name and address.
// @Tags Orders
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param request body models.CheckoutRequest true "Shipping and payment"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orders.Checkout(c.Request.Context(), middleware.CartOwner(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed", order)
}

// @Summary My orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *OrderController) ListMine(c *gin.Context) {
	page, limit := pagination(c)

	result, err := ctrl.orders.ListMine(c.Request.Context(), middleware.CurrentViewer(c).UserID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, "Orders retrieved", result, page, limit)
}

// @Summary Get order
// @Description Visible to the order's owner and to admins
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orders.Get(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", order)
}

// @Summary Look up an order
// @Description Guest order tracking by order number and checkout email
// @Tags Orders
// @Produce json
// @Param order_number query string true "Order number"
// @Param email query string true "Checkout email"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/lookup [get]
func (ctrl *OrderController) Lookup(c *gin.Context) {
	var req models.OrderLookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, utils.BindingError(err))
		return
	}

	order, err := ctrl.orders.Lookup(c.Request.Context(), req.OrderNumber, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", order)
}

// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by order number or email"
// @Success 200 {object} models.PaginationResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) List(c *gin.Context) {
	page, limit := pagination(c)
	filter := models.OrderFilter{
		Page:   page,
		Limit:  limit,
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Search: strings.TrimSpace(c.Query("search")),
	}

	result, err := ctrl.orders.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	respondPage(c, "Orders retrieved", result, page, limit)
}

// @Summary Get order (admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Router /admin/orders/{id} [get]
func (ctrl *OrderController) AdminGet(c *gin.Context) {
	ctrl.Get(c)
}

// @Summary Update order status
// @Description pending->paid|cancelled, paid->processing|refunded|cancelled, processing->shipped|cancelled, shipped->delivered
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}

// @Summary Export orders
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /admin/orders/export [get]
func (ctrl *OrderController) Export(c *gin.Context) {
	sendXLSX(c, "orders", func(w io.Writer) error {
		return ctrl.orders.Export(c.Request.Context(), w)
	})
}

// @Summary Live order feed
// @Description Websocket streaming order.created and order.updated events
// @Tags Admin - Orders
// @Security BearerAuth
// @Router /admin/orders/ws [get]
func (ctrl *OrderController) Stream(c *gin.Context) {
	// The upgrader has already answered the client when this fails.
	if err := ctrl.hub.ServeWS(c.Writer, c.Request); err != nil {
		logger.FromContext(c.Request.Context()).Debug().Err(err).Msg("websocket upgrade failed")
	}
}
