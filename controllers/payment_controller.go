package controllers

import (
	"io"
	"net/http"

	"spooky-styles/middleware"
	"spooky-styles/models"
	"spooky-styles/services"
	"spooky-styles/utils"

	"github.com/gin-gonic/gin"
)

// Webhook payloads are small; anything larger is not from a provider.
const maxWebhookBody = 1 << 20

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// @Summary Create Stripe payment intent
// @Description Returns the client secret for an unpaid order. Guests pass the checkout email.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentRequest true "Order to pay"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /payments/stripe/intent [post]
func (ctrl *PaymentController) CreateStripeIntent(c *gin.Context) {
	var req models.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := ctrl.payments.CreateStripeIntent(c.Request.Context(), middleware.CurrentViewer(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment intent created", intent)
}

// @Summary Initialize Paystack transaction
// @Description Returns the Paystack authorization URL for an unpaid order
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentRequest true "Order to pay"
// @Success 200 {object} models.Response
// @Router /payments/paystack/initialize [post]
func (ctrl *PaymentController) InitializePaystack(c *gin.Context) {
	var req models.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctrl.payments.InitializePaystack(c.Request.Context(), middleware.CurrentViewer(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment initialized", res)
}

// @Summary Verify Paystack transaction
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaystackVerifyRequest true "Transaction reference"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /payments/paystack/verify [post]
func (ctrl *PaymentController) VerifyPaystack(c *gin.Context) {
	var req models.PaystackVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := ctrl.payments.VerifyPaystack(c.Request.Context(), req.Reference)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment verified", order)
}

// @Summary Stripe webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /payments/webhook/stripe [post]
func (ctrl *PaymentController) StripeWebhook(c *gin.Context) {
	payload, ok := webhookBody(c)
	if !ok {
		return
	}

	if err := ctrl.payments.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Webhook received", nil)
}

// @Summary Paystack webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Param x-paystack-signature header string true "HMAC-SHA512 of the body"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /payments/webhook/paystack [post]
func (ctrl *PaymentController) PaystackWebhook(c *gin.Context) {
	payload, ok := webhookBody(c)
	if !ok {
		return
	}

	if err := ctrl.payments.HandlePaystackWebhook(c.Request.Context(), payload, c.GetHeader("x-paystack-signature")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Webhook received", nil)
}

// webhookBody reads the raw body; signatures are computed over these exact bytes.
func webhookBody(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil || len(payload) == 0 {
		fail(c, utils.BadRequest("Invalid webhook payload"))
		return nil, false
	}
	return payload, true
}
