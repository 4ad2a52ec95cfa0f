package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spooky-styles/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.StringFixed(2))

	d, err = ParseMoney(" 20 ")
	require.NoError(t, err)
	assert.Equal(t, "20.00", d.StringFixed(2))

	_, err = ParseMoney("19.999")
	assert.Error(t, err)

	_, err = ParseMoney("abc")
	assert.Error(t, err)
}

func bindJSON(t *testing.T, body string, dst any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(dst)
}

func TestBindingError_FieldMessages(t *testing.T) {
	var req models.RegisterRequest
	err := bindJSON(t, `{"email":"nope","password":"short"}`, &req)
	require.Error(t, err)

	appErr := BindingError(err)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "must be a valid email address", appErr.Fields["email"])
	assert.Equal(t, "must be at least 8", appErr.Fields["password"])
	assert.Equal(t, "is required", appErr.Fields["first_name"])
}

func TestBindingError_NestedFieldPath(t *testing.T) {
	var req models.CheckoutRequest
	err := bindJSON(t, `{"shipping":{"phone":"`+strings.Repeat("5", 31)+`","city":"Salem"}}`, &req)
	require.Error(t, err)

	appErr := BindingError(err)
	assert.Equal(t, map[string]string{"shipping.phone": "must be at most 30"}, appErr.Fields)
}

func TestBindingError_MalformedJSON(t *testing.T) {
	var req models.RegisterRequest
	err := bindJSON(t, `{"email":`, &req)
	require.Error(t, err)

	appErr := BindingError(err)
	assert.Equal(t, KindBadRequest, appErr.Kind)
}

func TestCustomValidators(t *testing.T) {
	var product models.CreateProductRequest
	err := bindJSON(t, `{"name":"Witch Wig","price":"12.345","category":"wigs"}`, &product)
	require.Error(t, err)
	assert.Equal(t, "must be a non-negative amount with at most two decimals", BindingError(err).Fields["price"])

	var status models.UpdateOrderStatusRequest
	err = bindJSON(t, `{"status":"teleported"}`, &status)
	require.Error(t, err)
	assert.Equal(t, "is not a valid order status", BindingError(err).Fields["status"])

	err = bindJSON(t, `{"status":"shipped"}`, &status)
	assert.NoError(t, err)
}
