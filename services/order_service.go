package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"spooky-styles/libs"
	"spooky-styles/logger"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/google/uuid"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"

	notifyTimeout = 30 * time.Second
)

type OrderService struct {
	orderRepo repositories.OrderRepository
	cartRepo  repositories.CartRepository
	userRepo  repositories.UserRepository
	mailer    Mailer
	notifier  Notifier

	now      func() time.Time
	runAsync func(func())
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	userRepo repositories.UserRepository,
	mailer Mailer,
	notifier Notifier,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		notifier:  notifier,
		now:       time.Now,
		runAsync:  func(fn func()) { go fn() },
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return models.GenerateOrderNumber(now, suffix)
}

// Checkout turns the owner's cart into an order. Prices and names are
// snapshotted and stock is reserved inside one transaction.
func (s *OrderService) Checkout(ctx context.Context, owner models.CartOwner, req models.CheckoutRequest) (*models.Order, error) {
	if !owner.Valid() {
		return nil, utils.BadRequest("Missing cart session")
	}

	shipping := trimShipping(req.Shipping)
	if !owner.IsGuest() {
		user, err := s.userRepo.FindByID(ctx, owner.UserID)
		if err != nil {
			return nil, userError(err)
		}
		shipping = fillFromProfile(shipping, user)
	}
	if fields := missingShipping(shipping); len(fields) > 0 {
		return nil, utils.Validation("Shipping details are incomplete", fields)
	}

	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.Internal("Failed to load cart", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, utils.BadRequest("Cart is empty")
	}

	provider := req.PaymentProvider
	if provider == "" {
		provider = models.PaymentProviderStripe
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(s.now()),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		PaymentProvider: provider,
		Shipping:        shipping,
		Notes:           strings.TrimSpace(req.Notes),
	}
	if !owner.IsGuest() {
		userID := owner.UserID
		order.UserID = &userID
	}
	for _, item := range cart.Items {
		productID := item.ProductID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      &productID,
			Quantity:       item.Quantity,
			Customizations: item.Customizations,
		})
	}

	if err := s.orderRepo.Create(ctx, order, cart.ID); err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			msg := err.Error()
			return nil, utils.BadRequest(strings.ToUpper(msg[:1]) + msg[1:])
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.Conflict("Order could not be placed, please retry")
		}
		return nil, utils.Internal("Failed to place order", err)
	}

	logger.FromContext(ctx).Info().
		Str("order_number", order.OrderNumber).
		Bool("guest", order.IsGuest()).
		Str("total", order.Total.StringFixed(2)).
		Msg("order placed")

	s.notify(ctx, EventOrderCreated, order, s.mailer.SendOrderConfirmation)
	return order, nil
}

// notify emails the customer and pushes the event to admin dashboards
// without holding up the request.
func (s *OrderService) notify(ctx context.Context, event string, order *models.Order, send func(context.Context, *models.Order) error) {
	log := logger.FromContext(ctx)
	snapshot := *order

	s.runAsync(func() {
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := send(mailCtx, &snapshot); err != nil {
			log.Warn().Err(err).Str("order_number", snapshot.OrderNumber).Msg("order email failed")
		}
	})
	s.notifier.Broadcast(event, snapshot)
}

func (s *OrderService) ListMine(ctx context.Context, userID, page, limit int) (models.Page[models.Order], error) {
	orders, err := s.orderRepo.List(ctx, models.OrderFilter{Page: page, Limit: limit, UserID: userID})
	if err != nil {
		return orders, utils.Internal("Failed to load orders", err)
	}
	return orders, nil
}

// Get returns an order its owner or an admin may see. Other callers get
// NotFound so order ids cannot be guessed.
func (s *OrderService) Get(ctx context.Context, viewer models.Viewer, id int) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	if !viewer.IsAdmin() && (viewer.IsGuest() || !order.OwnedBy(viewer.UserID)) {
		return nil, utils.NotFound("Order not found")
	}
	return order, nil
}

// Lookup lets guests find an order with its number and the checkout email.
func (s *OrderService) Lookup(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	order, err := s.orderRepo.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, orderError(err)
	}
	if !strings.EqualFold(order.Shipping.Email, strings.TrimSpace(email)) {
		return nil, utils.NotFound("Order not found")
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) (models.Page[models.Order], error) {
	if filter.Status != "" && !models.IsOrderStatus(filter.Status) {
		return models.Page[models.Order]{}, utils.BadRequest("Unknown order status")
	}
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return orders, utils.Internal("Failed to load orders", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along the allowed transitions. Cancelling
// puts the reserved stock back.
func (s *OrderService) UpdateStatus(ctx context.Context, id int, status string) (*models.Order, error) {
	current, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	if current.Status == status {
		return current, nil
	}
	if !models.CanTransition(current.Status, status) {
		return nil, utils.BadRequest("Cannot change order status from " + current.Status + " to " + status)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, current.Status, status)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusChanged) {
			return nil, utils.Conflict("Order status changed, reload and try again")
		}
		return nil, orderError(err)
	}

	logger.FromContext(ctx).Info().
		Str("order_number", order.OrderNumber).
		Str("from", current.Status).
		Str("to", status).
		Msg("order status updated")

	s.notify(ctx, EventOrderUpdated, order, s.mailer.SendOrderStatusUpdate)
	return order, nil
}

func (s *OrderService) Export(ctx context.Context, w io.Writer) error {
	orders, err := s.orderRepo.All(ctx)
	if err != nil {
		return utils.Internal("Failed to load orders", err)
	}
	if err := libs.WriteOrdersXLSX(w, orders); err != nil {
		return utils.Internal("Failed to build export", err)
	}
	return nil
}

func trimShipping(in models.ShippingInfo) models.ShippingInfo {
	return models.ShippingInfo{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
}

func fillFromProfile(s models.ShippingInfo, user *models.User) models.ShippingInfo {
	if s.FirstName == "" {
		s.FirstName = user.FirstName
	}
	if s.LastName == "" {
		s.LastName = user.LastName
	}
	if s.Email == "" {
		s.Email = user.Email
	}
	if s.Phone == "" {
		s.Phone = user.Phone
	}
	return s
}

func missingShipping(s models.ShippingInfo) map[string]string {
	fields := map[string]string{}
	if s.Email == "" {
		fields["shipping.email"] = "is required"
	} else if !strings.Contains(s.Email, "@") {
		fields["shipping.email"] = "must be a valid email address"
	}
	if s.FirstName == "" {
		fields["shipping.first_name"] = "is required"
	}
	if s.LastName == "" {
		fields["shipping.last_name"] = "is required"
	}
	if s.Address == "" {
		fields["shipping.address"] = "is required"
	}
	if s.City == "" {
		fields["shipping.city"] = "is required"
	}
	if s.Country == "" {
		fields["shipping.country"] = "is required"
	}
	return fields
}

func orderError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("Order not found")
	}
	return utils.Internal("Failed to load order", err)
}
