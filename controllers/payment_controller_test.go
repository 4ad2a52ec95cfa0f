package controllers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spooky-styles/config"
	"spooky-styles/libs"
	"spooky-styles/logger"
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

const paystackSecret = "sk_test_pumpkin"

type paymentFixture struct {
	router *gin.Engine
	orders *mocks.MockOrderRepository
	stripe *mocks.MockStripeGateway
}

// newPaymentRouter wires a mocked Stripe gateway and a real Paystack client
// pointed at paystackURL.
func newPaymentRouter(t *testing.T, ctrl *gomock.Controller, paystackURL string) paymentFixture {
	t.Helper()

	f := paymentFixture{
		orders: mocks.NewMockOrderRepository(ctrl),
		stripe: mocks.NewMockStripeGateway(ctrl),
	}
	paystack := libs.NewPaystackClient(config.PaystackConfig{SecretKey: paystackSecret, BaseURL: paystackURL, Currency: "NGN"})
	pc := NewPaymentController(services.NewPaymentService(f.orders, f.stripe, paystack, libs.NewHub(nil, logger.Nop())))

	r := newTestRouter()
	r.POST("/payments/stripe/intent", pc.CreateStripeIntent)
	r.POST("/payments/paystack/initialize", pc.InitializePaystack)
	r.POST("/payments/paystack/verify", pc.VerifyPaystack)
	r.POST("/payments/webhook/stripe", pc.StripeWebhook)
	r.POST("/payments/webhook/paystack", pc.PaystackWebhook)
	f.router = r
	return f
}

func guestOrder() *models.Order {
	return &models.Order{
		ID:            12,
		OrderNumber:   "SS-20251031-ABCDEF12",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		Shipping:      models.ShippingInfo{Email: "lily@example.com"},
		Total:         decimal.RequireFromString("42.50"),
	}
}

func paystackSign(payload string) string {
	mac := hmac.New(sha512.New, []byte(paystackSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentController_StripeIntent_GuestNeedsEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newPaymentRouter(t, ctrl, "http://127.0.0.1:0")

	f.stripe.EXPECT().Enabled().Return(true).AnyTimes()
	f.orders.EXPECT().FindByID(gomock.Any(), 12).Return(guestOrder(), nil).Times(2)

	w := serve(t, f.router, request{method: http.MethodPost, path: "/payments/stripe/intent", body: `{"order_id":12}`})
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.stripe.EXPECT().CreatePaymentIntent(gomock.Any(), libs.PaymentIntentRequest{
		OrderID:     12,
		OrderNumber: "SS-20251031-ABCDEF12",
		Amount:      4250,
		Email:       "lily@example.com",
	}).Return(&libs.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Status: "requires_payment_method"}, nil)
	f.orders.EXPECT().SetPaymentReference(gomock.Any(), 12, models.PaymentProviderStripe, "pi_1").Return(nil)

	w = serve(t, f.router, request{method: http.MethodPost, path: "/payments/stripe/intent", body: `{"order_id":12,"email":"Lily@example.com"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var intent libs.PaymentIntent
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &intent))
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
}

func TestPaymentController_StripeIntent_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newPaymentRouter(t, ctrl, "http://127.0.0.1:0")

	w := serve(t, f.router, request{method: http.MethodPost, path: "/payments/stripe/intent", body: `{"email":"lily@example.com"}`})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Errors, "order_id")
}

func TestPaymentController_StripeWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newPaymentRouter(t, ctrl, "http://127.0.0.1:0")
	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`

	t.Run("raw body and signature reach the gateway", func(t *testing.T) {
		gomock.InOrder(
			f.stripe.EXPECT().ParseWebhook([]byte(payload), "t=1,v1=abc").
				Return(&libs.PaymentEvent{Provider: models.PaymentProviderStripe, Type: "payment_intent.succeeded", OrderID: 12, Succeeded: true}, nil),
			f.orders.EXPECT().FindByID(gomock.Any(), 12).Return(guestOrder(), nil),
			f.orders.EXPECT().MarkPaid(gomock.Any(), 12).Return(&models.Order{ID: 12, PaymentStatus: models.PaymentStatusPaid}, nil),
		)

		w := serve(t, f.router, request{
			method:  http.MethodPost,
			path:    "/payments/webhook/stripe",
			body:    payload,
			headers: map[string]string{"Stripe-Signature": "t=1,v1=abc"},
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("bad signature", func(t *testing.T) {
		f.stripe.EXPECT().ParseWebhook(gomock.Any(), "forged").Return(nil, libs.ErrInvalidSignature)

		w := serve(t, f.router, request{
			method:  http.MethodPost,
			path:    "/payments/webhook/stripe",
			body:    payload,
			headers: map[string]string{"Stripe-Signature": "forged"},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid webhook signature", decode(t, w).Message)
	})

	t.Run("empty body", func(t *testing.T) {
		w := serve(t, f.router, request{method: http.MethodPost, path: "/payments/webhook/stripe"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentController_PaystackWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newPaymentRouter(t, ctrl, "http://127.0.0.1:0")
	payload := `{"event":"charge.success","data":{"reference":"SS-20251031-ABCDEF12-1761912000","status":"success","amount":4250}}`

	t.Run("signed", func(t *testing.T) {
		gomock.InOrder(
			f.orders.EXPECT().FindByPaymentReference(gomock.Any(), "SS-20251031-ABCDEF12-1761912000").Return(guestOrder(), nil),
			f.orders.EXPECT().MarkPaid(gomock.Any(), 12).Return(&models.Order{ID: 12, PaymentStatus: models.PaymentStatusPaid}, nil),
		)

		w := serve(t, f.router, request{
			method:  http.MethodPost,
			path:    "/payments/webhook/paystack",
			body:    payload,
			headers: map[string]string{"x-paystack-signature": paystackSign(payload)},
		})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("tampered body", func(t *testing.T) {
		w := serve(t, f.router, request{
			method:  http.MethodPost,
			path:    "/payments/webhook/paystack",
			body:    payload + " ",
			headers: map[string]string{"x-paystack-signature": paystackSign(payload)},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown order is acknowledged", func(t *testing.T) {
		other := `{"event":"charge.success","data":{"reference":"nope","status":"success","amount":1}}`
		f.orders.EXPECT().FindByPaymentReference(gomock.Any(), "nope").Return(nil, repositories.ErrNotFound)

		w := serve(t, f.router, request{
			method:  http.MethodPost,
			path:    "/payments/webhook/paystack",
			body:    other,
			headers: map[string]string{"x-paystack-signature": paystackSign(other)},
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPaymentController_VerifyPaystack(t *testing.T) {
	const reference = "SS-20251031-ABCDEF12-1761912000"

	paystack := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/"+reference, r.URL.Path)
		assert.Equal(t, "Bearer "+paystackSecret, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful",
			"data":{"reference":"` + reference + `","status":"success","amount":4250,"currency":"NGN"}}`))
	}))
	t.Cleanup(paystack.Close)

	ctrl := gomock.NewController(t)
	f := newPaymentRouter(t, ctrl, paystack.URL)

	gomock.InOrder(
		f.orders.EXPECT().FindByPaymentReference(gomock.Any(), reference).Return(guestOrder(), nil),
		f.orders.EXPECT().MarkPaid(gomock.Any(), 12).
			Return(&models.Order{ID: 12, Status: models.OrderStatusPaid, PaymentStatus: models.PaymentStatusPaid}, nil),
	)

	w := serve(t, f.router, request{method: http.MethodPost, path: "/payments/paystack/verify", body: `{"reference":"` + reference + `"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &order))
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}
