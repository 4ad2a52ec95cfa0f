package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"
)

type PaymentService struct {
	orderRepo repositories.OrderRepository
	stripe    StripeGateway
	paystack  PaystackGateway
	notifier  Notifier
	now       func() time.Time
}

func NewPaymentService(orderRepo repositories.OrderRepository, stripe StripeGateway, paystack PaystackGateway, notifier Notifier) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		stripe:    stripe,
		paystack:  paystack,
		notifier:  notifier,
		now:       time.Now,
	}
}

// payableOrder loads an order the viewer may pay for. Guest orders are
// unlocked by the checkout email.
func (s *PaymentService) payableOrder(ctx context.Context, viewer models.Viewer, req models.PaymentRequest) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, orderError(err)
	}

	switch {
	case viewer.IsAdmin():
	case order.IsGuest():
		if !strings.EqualFold(order.Shipping.Email, strings.TrimSpace(req.Email)) {
			return nil, utils.NotFound("Order not found")
		}
	case !order.OwnedBy(viewer.UserID):
		return nil, utils.NotFound("Order not found")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, utils.Conflict("Order is already paid")
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.BadRequest("Order can no longer be paid")
	}
	return order, nil
}

func (s *PaymentService) CreateStripeIntent(ctx context.Context, viewer models.Viewer, req models.PaymentRequest) (*libs.PaymentIntent, error) {
	if !s.stripe.Enabled() {
		return nil, utils.BadRequest("Stripe payments are not available")
	}

	order, err := s.payableOrder(ctx, viewer, req)
	if err != nil {
		return nil, err
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, libs.PaymentIntentRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      models.MinorUnits(order.Total),
		Email:       order.Shipping.Email,
	})
	if err != nil {
		return nil, utils.Internal("Failed to create payment", err)
	}

	if err := s.orderRepo.SetPaymentReference(ctx, order.ID, models.PaymentProviderStripe, intent.ID); err != nil {
		return nil, orderError(err)
	}

	logger.FromContext(ctx).Info().
		Str("order_number", order.OrderNumber).
		Str("intent", intent.ID).
		Msg("stripe payment intent created")
	return intent, nil
}

// InitializePaystack starts a Paystack transaction. Paystack rejects reused
// references, so each attempt gets the order number plus a timestamp.
func (s *PaymentService) InitializePaystack(ctx context.Context, viewer models.Viewer, req models.PaymentRequest) (*libs.PaystackInitResult, error) {
	if !s.paystack.Enabled() {
		return nil, utils.BadRequest("Paystack payments are not available")
	}

	order, err := s.payableOrder(ctx, viewer, req)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("%s-%d", order.OrderNumber, s.now().Unix())
	res, err := s.paystack.Initialize(ctx, libs.PaystackInitRequest{
		Email:     order.Shipping.Email,
		Amount:    models.MinorUnits(order.Total),
		Reference: reference,
		OrderID:   order.ID,
	})
	if err != nil {
		return nil, utils.Internal("Failed to initialize payment", err)
	}

	if err := s.orderRepo.SetPaymentReference(ctx, order.ID, models.PaymentProviderPaystack, reference); err != nil {
		return nil, orderError(err)
	}
	return res, nil
}

// VerifyPaystack asks Paystack for the transaction outcome and records it.
func (s *PaymentService) VerifyPaystack(ctx context.Context, reference string) (*models.Order, error) {
	if !s.paystack.Enabled() {
		return nil, utils.BadRequest("Paystack payments are not available")
	}

	order, err := s.orderRepo.FindByPaymentReference(ctx, reference)
	if err != nil {
		return nil, orderError(err)
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return order, nil
	}

	tx, err := s.paystack.Verify(ctx, reference)
	if err != nil {
		return nil, utils.Internal("Failed to verify payment", err)
	}
	if !tx.Succeeded() {
		return nil, utils.BadRequest("Payment was not successful (" + tx.Status + ")")
	}
	if tx.Amount != models.MinorUnits(order.Total) {
		logger.FromContext(ctx).Warn().
			Str("order_number", order.OrderNumber).
			Int64("paid", tx.Amount).
			Int64("expected", models.MinorUnits(order.Total)).
			Msg("paystack amount mismatch")
		return nil, utils.BadRequest("Paid amount does not match the order total")
	}

	return s.markPaid(ctx, order.ID)
}

func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripe.ParseWebhook(payload, signature)
	if err != nil {
		return webhookError(err)
	}
	return s.apply(ctx, event)
}

func (s *PaymentService) HandlePaystackWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.paystack.ParseWebhook(payload, signature)
	if err != nil {
		return webhookError(err)
	}
	return s.apply(ctx, event)
}

// apply records a verified webhook event. Unknown orders and event types are
// acknowledged so the provider stops retrying.
func (s *PaymentService) apply(ctx context.Context, event *libs.PaymentEvent) error {
	log := logger.FromContext(ctx).With().
		Str("provider", event.Provider).
		Str("event", event.Type).
		Str("reference", event.Reference).
		Logger()

	if !event.Succeeded && !event.Failed {
		log.Debug().Msg("payment webhook ignored")
		return nil
	}

	order, err := s.findEventOrder(ctx, event)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn().Msg("payment webhook for unknown order")
			return nil
		}
		return utils.Internal("Failed to load order", err)
	}

	if event.Failed {
		if err := s.orderRepo.MarkPaymentFailed(ctx, order.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return utils.Internal("Failed to record payment failure", err)
		}
		log.Info().Str("order_number", order.OrderNumber).Msg("payment failed")
		return nil
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}
	if expected := models.MinorUnits(order.Total); event.Amount != 0 && event.Amount != expected {
		log.Warn().
			Str("order_number", order.OrderNumber).
			Int64("paid", event.Amount).
			Int64("expected", expected).
			Msg("payment webhook amount mismatch, order left unpaid")
		return nil
	}
	if _, err := s.markPaid(ctx, order.ID); err != nil {
		return err
	}
	log.Info().Str("order_number", order.OrderNumber).Msg("payment received")
	return nil
}

func (s *PaymentService) findEventOrder(ctx context.Context, event *libs.PaymentEvent) (*models.Order, error) {
	if event.OrderID > 0 {
		return s.orderRepo.FindByID(ctx, event.OrderID)
	}
	if event.Reference == "" {
		return nil, repositories.ErrNotFound
	}
	return s.orderRepo.FindByPaymentReference(ctx, event.Reference)
}

func (s *PaymentService) markPaid(ctx context.Context, orderID int) (*models.Order, error) {
	order, err := s.orderRepo.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, orderError(err)
	}
	s.notifier.Broadcast(EventOrderUpdated, *order)
	return order, nil
}

func webhookError(err error) error {
	switch {
	case errors.Is(err, libs.ErrInvalidSignature):
		return utils.BadRequest("Invalid webhook signature")
	case errors.Is(err, libs.ErrPaymentsDisabled):
		return utils.BadRequest("Payment provider is not configured")
	}
	return utils.BadRequest("Invalid webhook payload")
}
