package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"spooky-styles/mocks"
	"spooky-styles/models"
	"spooky-styles/repositories"
	"spooky-styles/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orderMocks struct {
	orders   *mocks.MockOrderRepository
	carts    *mocks.MockCartRepository
	users    *mocks.MockUserRepository
	mailer   *mocks.MockMailer
	notifier *mocks.MockNotifier
}

func newTestOrderSvc(t *testing.T, ctrl *gomock.Controller) (*OrderService, orderMocks) {
	t.Helper()
	m := orderMocks{
		orders:   mocks.NewMockOrderRepository(ctrl),
		carts:    mocks.NewMockCartRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		mailer:   mocks.NewMockMailer(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	svc := NewOrderService(m.orders, m.carts, m.users, m.mailer, m.notifier)
	svc.now = func() time.Time { return time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC) }
	svc.runAsync = func(fn func()) { fn() }
	return svc, m
}

var guestShipping = models.ShippingInfo{
	FirstName: "Wednesday",
	LastName:  "Addams",
	Email:     "Wednesday@Example.com",
	Address:   "0001 Cemetery Lane",
	City:      "Westfield",
	Country:   "US",
}

func cartWithItems() *models.Cart {
	return &models.Cart{ID: 10, Items: []models.CartItem{
		{ID: 1, ProductID: 3, Quantity: 2, UnitPrice: decimal.NewFromInt(30), Customizations: models.Customizations{"color": "black"}},
		{ID: 2, ProductID: 4, Quantity: 1, UnitPrice: decimal.NewFromInt(20)},
	}}
}

func TestNewOrderNumber_Format(t *testing.T) {
	n := newOrderNumber(time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^SS-20251031-[0-9A-F]{8}$`), n)
}

func TestOrderService_Checkout_Guest(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)

	m.carts.EXPECT().Find(gomock.Any(), guestOwner).Return(cartWithItems(), nil)
	m.orders.EXPECT().Create(gomock.Any(), gomock.Any(), 10).DoAndReturn(func(_ context.Context, o *models.Order, _ int) error {
		assert.Nil(t, o.UserID)
		assert.Equal(t, "wednesday@example.com", o.Shipping.Email)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Equal(t, models.PaymentStatusUnpaid, o.PaymentStatus)
		assert.Equal(t, models.PaymentProviderPaystack, o.PaymentProvider)
		assert.Contains(t, o.OrderNumber, "SS-20251031-")
		require.Len(t, o.Items, 2)
		assert.Equal(t, 3, *o.Items[0].ProductID)
		assert.Equal(t, models.Customizations{"color": "black"}, o.Items[0].Customizations)
		o.ID = 55
		return nil
	})
	m.mailer.EXPECT().SendOrderConfirmation(gomock.Any(), gomock.Any()).Return(nil)
	m.notifier.EXPECT().Broadcast(EventOrderCreated, gomock.Any())

	order, err := svc.Checkout(context.Background(), guestOwner, models.CheckoutRequest{
		Shipping:        guestShipping,
		PaymentProvider: models.PaymentProviderPaystack,
	})
	require.NoError(t, err)
	assert.Equal(t, 55, order.ID)
}

func TestOrderService_Checkout_GuestMissingContact(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestOrderSvc(t, ctrl)

	_, err := svc.Checkout(context.Background(), guestOwner, models.CheckoutRequest{
		Shipping: models.ShippingInfo{FirstName: "Wednesday"},
	})
	requireKind(t, err, utils.KindValidation)

	appErr, _ := utils.AsAppError(err)
	assert.Contains(t, appErr.Fields, "shipping.email")
	assert.Contains(t, appErr.Fields, "shipping.address")
}

func TestOrderService_Checkout_UserDefaultsFromProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)

	m.users.EXPECT().FindByID(gomock.Any(), 7).Return(&models.User{
		ID: 7, Email: "gomez@example.com", FirstName: "Gomez", LastName: "Addams", Phone: "555-0100",
	}, nil)
	m.carts.EXPECT().Find(gomock.Any(), userOwner).Return(cartWithItems(), nil)
	m.orders.EXPECT().Create(gomock.Any(), gomock.Any(), 10).DoAndReturn(func(_ context.Context, o *models.Order, _ int) error {
		require.NotNil(t, o.UserID)
		assert.Equal(t, 7, *o.UserID)
		assert.Equal(t, "gomez@example.com", o.Shipping.Email)
		assert.Equal(t, "Gomez", o.Shipping.FirstName)
		assert.Equal(t, "555-0100", o.Shipping.Phone)
		assert.Equal(t, models.PaymentProviderStripe, o.PaymentProvider)
		return nil
	})
	m.mailer.EXPECT().SendOrderConfirmation(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
	m.notifier.EXPECT().Broadcast(EventOrderCreated, gomock.Any())

	_, err := svc.Checkout(context.Background(), userOwner, models.CheckoutRequest{
		Shipping: models.ShippingInfo{Address: "1 Mansion Hill", City: "Westfield", Country: "US"},
	})
	require.NoError(t, err)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)

	m.carts.EXPECT().Find(gomock.Any(), guestOwner).Return(nil, repositories.ErrNotFound)

	_, err := svc.Checkout(context.Background(), guestOwner, models.CheckoutRequest{Shipping: guestShipping})
	requireKind(t, err, utils.KindBadRequest)
}

func TestOrderService_Checkout_InsufficientStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)

	m.carts.EXPECT().Find(gomock.Any(), guestOwner).Return(cartWithItems(), nil)
	m.orders.EXPECT().Create(gomock.Any(), gomock.Any(), 10).
		Return(fmt.Errorf("%w: only 1 of Silver Wig left", repositories.ErrInsufficientStock))

	_, err := svc.Checkout(context.Background(), guestOwner, models.CheckoutRequest{Shipping: guestShipping})
	requireKind(t, err, utils.KindBadRequest)
	assert.Equal(t, "Insufficient stock: only 1 of Silver Wig left", err.Error())
}

func TestOrderService_Get_Access(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)
	owned := &models.Order{ID: 5, UserID: intPtr(7)}

	m.orders.EXPECT().FindByID(gomock.Any(), 5).Return(owned, nil).Times(4)

	_, err := svc.Get(context.Background(), models.Viewer{UserID: 7}, 5)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), adminViewer, 5)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), models.Viewer{UserID: 8}, 5)
	requireKind(t, err, utils.KindNotFound)

	_, err = svc.Get(context.Background(), models.Viewer{}, 5)
	requireKind(t, err, utils.KindNotFound)
}

func TestOrderService_Lookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestOrderSvc(t, ctrl)
	order := &models.Order{OrderNumber: "SS-20251031-ABCDEF12", Shipping: models.ShippingInfo{Email: "wednesday@example.com"}}

	m.orders.EXPECT().FindByNumber(gomock.Any(), "SS-20251031-ABCDEF12").Return(order, nil).Times(2)

	got, err := svc.Lookup(context.Background(), " SS-20251031-ABCDEF12 ", "WEDNESDAY@example.com")
	require.NoError(t, err)
	assert.Equal(t, order, got)

	_, err = svc.Lookup(context.Background(), "SS-20251031-ABCDEF12", "pugsley@example.com")
	requireKind(t, err, utils.KindNotFound)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Run("allowed transition notifies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, m := newTestOrderSvc(t, ctrl)

		m.orders.EXPECT().FindByID(gomock.Any(), 5).Return(&models.Order{ID: 5, Status: models.OrderStatusPaid}, nil)
		m.orders.EXPECT().UpdateStatus(gomock.Any(), 5, models.OrderStatusPaid, models.OrderStatusProcessing).
			Return(&models.Order{ID: 5, Status: models.OrderStatusProcessing}, nil)
		m.mailer.EXPECT().SendOrderStatusUpdate(gomock.Any(), gomock.Any()).Return(nil)
		m.notifier.EXPECT().Broadcast(EventOrderUpdated, gomock.Any())

		order, err := svc.UpdateStatus(context.Background(), 5, models.OrderStatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, m := newTestOrderSvc(t, ctrl)

		m.orders.EXPECT().FindByID(gomock.Any(), 5).Return(&models.Order{ID: 5, Status: models.OrderStatusDelivered}, nil)

		_, err := svc.UpdateStatus(context.Background(), 5, models.OrderStatusPending)
		requireKind(t, err, utils.KindBadRequest)
	})

	t.Run("concurrent change", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, m := newTestOrderSvc(t, ctrl)

		m.orders.EXPECT().FindByID(gomock.Any(), 5).Return(&models.Order{ID: 5, Status: models.OrderStatusPending}, nil)
		m.orders.EXPECT().UpdateStatus(gomock.Any(), 5, models.OrderStatusPending, models.OrderStatusCancelled).
			Return(nil, repositories.ErrStatusChanged)

		_, err := svc.UpdateStatus(context.Background(), 5, models.OrderStatusCancelled)
		requireKind(t, err, utils.KindConflict)
	})
}

func TestOrderService_List_UnknownStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestOrderSvc(t, ctrl)

	_, err := svc.List(context.Background(), models.OrderFilter{Status: "haunted"})
	requireKind(t, err, utils.KindBadRequest)
}
